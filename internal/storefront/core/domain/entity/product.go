package entity

import "github.com/shopspring/decimal"

// Product is a catalog entry. The core only reads ID, Name and Price.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Image       string
}

// LineItem is one product's price/quantity snapshot within the cart.
type LineItem struct {
	ProductID string
	Name      string
	Price     float64
	Quantity  int
}

// Amount is price times quantity in exact decimal arithmetic.
func (i LineItem) Amount() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i LineItem) Subtotal() float64 {
	return i.Amount().InexactFloat64()
}
