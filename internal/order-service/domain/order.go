package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrOrderNotFound = errors.New("order not found")

// InvalidOrderError describes the first rule a create request broke.
type InvalidOrderError struct {
	Reason string
}

func (e *InvalidOrderError) Error() string {
	return "invalid order: " + e.Reason
}

func invalid(format string, args ...any) error {
	return &InvalidOrderError{Reason: fmt.Sprintf(format, args...)}
}

type Order struct {
	ID              string
	CustomerID      string
	Items           []OrderItem
	TotalAmount     float64
	ShippingAddress ShippingAddress
	Status          OrderStatus
	IdempotencyKey  string
	RequestID       string
	CreatedAt       time.Time
}

type OrderItem struct {
	ProductID string
	Quantity  int
	UnitPrice float64
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.UnitPrice).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type ShippingAddress struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusFailed    OrderStatus = "FAILED"
)

// ItemsTotal sums price times quantity over all items.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Validate checks a create request. The declared total must match the item
// sum to the cent.
func (o *Order) Validate() error {
	if o.CustomerID == "" {
		return invalid("customerId is required")
	}
	if len(o.Items) == 0 {
		return invalid("at least one item is required")
	}
	for i, item := range o.Items {
		if item.ProductID == "" {
			return invalid("items[%d].productId is required", i)
		}
		if item.Quantity < 1 {
			return invalid("items[%d].quantity must be at least 1", i)
		}
		if item.UnitPrice < 0 {
			return invalid("items[%d].price must not be negative", i)
		}
	}

	addr := o.ShippingAddress
	for _, f := range []struct{ name, value string }{
		{"street", addr.Street},
		{"city", addr.City},
		{"state", addr.State},
		{"zipCode", addr.ZipCode},
		{"country", addr.Country},
	} {
		if f.value == "" {
			return invalid("shippingAddress.%s is required", f.name)
		}
	}

	declared := decimal.NewFromFloat(o.TotalAmount).Round(2)
	computed := o.ItemsTotal().Round(2)
	if !declared.Equal(computed) {
		return invalid("totalAmount %s does not match items total %s", declared.StringFixed(2), computed.StringFixed(2))
	}
	return nil
}
