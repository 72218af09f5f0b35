package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

// Ensure fakeOrderService implements the port at compile time.
var _ ports.OrderService = (*fakeOrderService)(nil)

// fakeOrderService is an in-memory ports.OrderService for local development
// without a running order endpoint. Do NOT use in production.
type fakeOrderService struct {
	mu    sync.Mutex
	byKey map[string]string
}

// NewFakeOrderService returns an in-memory OrderService. Replays of the same
// idempotency key return the same order id.
func NewFakeOrderService() ports.OrderService {
	return &fakeOrderService{
		byKey: make(map[string]string),
	}
}

func (f *fakeOrderService) CreateOrder(ctx context.Context, req entity.OrderRequest) (*entity.OrderReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id, ok := f.byKey[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		return &entity.OrderReceipt{ID: id}, nil
	}

	id := uuid.NewString()
	if req.IdempotencyKey != "" {
		f.byKey[req.IdempotencyKey] = id
	}
	return &entity.OrderReceipt{ID: id}, nil
}
