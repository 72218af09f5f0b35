// Package session is the per-shopper state container. A Session owns the cart
// ledger and the checkout orchestrator and is the only way callers reach them.
package session

import (
	"context"
	"slices"
	"sync"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/cart"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

// Session serialises every intent of one shopper behind a single lock shared
// with its orchestrator.
type Session struct {
	id       string
	mu       sync.Mutex
	ledger   *cart.Ledger
	checkout *checkout.Orchestrator
}

func New(id string, orders ports.OrderService, opts ...checkout.Option) *Session {
	s := &Session{id: id, ledger: cart.NewLedger()}
	opts = append(slices.Clone(opts), checkout.WithLocker(&s.mu))
	s.checkout = checkout.NewOrchestrator(s.ledger, orders, opts...)
	return s
}

func (s *Session) ID() string { return s.id }

// AddItem is always allowed, including while a submission is in flight.
func (s *Session) AddItem(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.AddItem(p)
}

func (s *Session) RemoveItem(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.RemoveItem(productID)
}

func (s *Session) UpdateAddressField(field entity.AddressField, value string) error {
	return s.checkout.UpdateAddressField(field, value)
}

// SubmitOrder delegates to checkout.Orchestrator.SubmitOrder.
func (s *Session) SubmitOrder(ctx context.Context) (entity.OrderStatus, error) {
	return s.checkout.SubmitOrder(ctx)
}

// Snapshot is a consistent view for the presentation layer.
func (s *Session) Snapshot() checkout.Snapshot {
	return s.checkout.Snapshot()
}
