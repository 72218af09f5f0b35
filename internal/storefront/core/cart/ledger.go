// Package cart holds the shopper's line items and derives their total.
package cart

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

// Ledger is the ordered set of line items, at most one per product.
// It is not safe for concurrent use; session.Session serialises access.
type Ledger struct {
	items []entity.LineItem
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// AddItem bumps the quantity of an existing line or appends a new one priced at
// the product's current price. The price of an existing line is never updated.
func (l *Ledger) AddItem(p entity.Product) {
	if i := l.index(p.ID); i >= 0 {
		l.items[i].Quantity++
		return
	}
	l.items = append(l.items, entity.LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
	})
}

// RemoveItem drops the line for productID; unknown ids are ignored.
func (l *Ledger) RemoveItem(productID string) {
	if i := l.index(productID); i >= 0 {
		l.items = slices.Delete(l.items, i, i+1)
	}
}

// Total is recomputed from the current lines on every call.
func (l *Ledger) Total() float64 {
	sum := decimal.Zero
	for _, it := range l.items {
		sum = sum.Add(it.Amount())
	}
	return sum.InexactFloat64()
}

func (l *Ledger) IsEmpty() bool { return len(l.items) == 0 }

// Count is the number of distinct line items (the cart badge).
func (l *Ledger) Count() int { return len(l.items) }

// Units is the total number of units across all lines.
func (l *Ledger) Units() int {
	n := 0
	for _, it := range l.items {
		n += it.Quantity
	}
	return n
}

// Items returns a copy of the lines in insertion order.
func (l *Ledger) Items() []entity.LineItem {
	return slices.Clone(l.items)
}

func (l *Ledger) Clear() {
	l.items = nil
}

func (l *Ledger) index(productID string) int {
	return slices.IndexFunc(l.items, func(it entity.LineItem) bool {
		return it.ProductID == productID
	})
}
