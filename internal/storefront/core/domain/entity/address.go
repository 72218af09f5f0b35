package entity

import (
	"errors"
	"fmt"
)

// ErrUnknownAddressField is returned for names or values outside the closed
// AddressField set.
var ErrUnknownAddressField = errors.New("unknown address field")

// AddressField enumerates the shipping address fields. The declaration order is
// the order in which fields are validated.
type AddressField int

const (
	FieldStreet AddressField = iota
	FieldCity
	FieldState
	FieldZipCode
	FieldCountry
)

var addressFieldNames = [...]string{
	FieldStreet:  "street",
	FieldCity:    "city",
	FieldState:   "state",
	FieldZipCode: "zipCode",
	FieldCountry: "country",
}

// AddressFields returns every field in validation order.
func AddressFields() []AddressField {
	return []AddressField{FieldStreet, FieldCity, FieldState, FieldZipCode, FieldCountry}
}

func (f AddressField) Valid() bool {
	return f >= FieldStreet && f <= FieldCountry
}

func (f AddressField) String() string {
	if !f.Valid() {
		return fmt.Sprintf("AddressField(%d)", int(f))
	}
	return addressFieldNames[f]
}

// ParseAddressField maps a wire name ("zipCode", ...) to its AddressField.
func ParseAddressField(name string) (AddressField, error) {
	for _, f := range AddressFields() {
		if addressFieldNames[f] == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAddressField, name)
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

func (a ShippingAddress) Get(f AddressField) string {
	switch f {
	case FieldStreet:
		return a.Street
	case FieldCity:
		return a.City
	case FieldState:
		return a.State
	case FieldZipCode:
		return a.ZipCode
	case FieldCountry:
		return a.Country
	default:
		return ""
	}
}

// Set overwrites a single field. Invalid fields are rejected, not ignored.
func (a *ShippingAddress) Set(f AddressField, value string) error {
	switch f {
	case FieldStreet:
		a.Street = value
	case FieldCity:
		a.City = value
	case FieldState:
		a.State = value
	case FieldZipCode:
		a.ZipCode = value
	case FieldCountry:
		a.Country = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAddressField, f)
	}
	return nil
}

// FirstMissing reports the first empty field in validation order.
// Whitespace counts as content.
func (a ShippingAddress) FirstMissing() (AddressField, bool) {
	for _, f := range AddressFields() {
		if a.Get(f) == "" {
			return f, true
		}
	}
	return 0, false
}

// MissingFields lists every empty field in validation order.
func (a ShippingAddress) MissingFields() []AddressField {
	var missing []AddressField
	for _, f := range AddressFields() {
		if a.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}
