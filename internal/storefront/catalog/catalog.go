// Package catalog serves the fixed product list the storefront sells.
package catalog

import (
	"slices"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

// Catalog is an ordered, read-only product list.
type Catalog struct {
	products []entity.Product
}

func New(products []entity.Product) *Catalog {
	return &Catalog{products: slices.Clone(products)}
}

// Default returns the demo catalog.
func Default() *Catalog {
	return New([]entity.Product{
		{
			ID:          "64c2fc901c2f8b4f68b2ef66",
			Name:        "Premium Wireless Headphones",
			Description: "High-quality wireless headphones with noise cancellation",
			Price:       79.99,
		},
		{
			ID:          "64c2fca01c2f8b4f68b2ef67",
			Name:        "Smart Fitness Watch",
			Description: "Advanced fitness tracking with heart rate monitoring",
			Price:       149.99,
		},
		{
			ID:          "64c2fcb01c2f8b4f68b2ef68",
			Name:        "Bluetooth Speaker",
			Description: "Portable speaker with deep bass and long battery life",
			Price:       89.99,
		},
	})
}

func (c *Catalog) Products() []entity.Product {
	return slices.Clone(c.products)
}

func (c *Catalog) Find(id string) (entity.Product, bool) {
	i := slices.IndexFunc(c.products, func(p entity.Product) bool { return p.ID == id })
	if i < 0 {
		return entity.Product{}, false
	}
	return c.products[i], true
}
