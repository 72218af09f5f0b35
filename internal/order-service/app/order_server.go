package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-storefront/internal/order-service/domain"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/cache"
)

const idempotencyTTL = 24 * time.Hour

// ErrRequestInFlight is returned when another request holding the same
// idempotency key has not stored its order yet.
var ErrRequestInFlight = errors.New("request with the same idempotency key is in progress")

type OrderServer struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	cache  cache.Cache
	now    func() time.Time
}

// NewOrderServer builds an in-memory order store. A nil cache disables
// idempotent replay.
func NewOrderServer(c cache.Cache) *OrderServer {
	return &OrderServer{
		orders: make(map[string]*domain.Order),
		cache:  c,
		now:    time.Now,
	}
}

// CreateOrder validates and stores order. The second return value is true when
// the order was replayed from an earlier request with the same idempotency key.
func (s *OrderServer) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, bool, error) {
	if err := order.Validate(); err != nil {
		return nil, false, err
	}

	order.ID = uuid.NewString()
	order.Status = domain.StatusPending
	order.CreatedAt = s.now().UTC()

	if order.IdempotencyKey != "" && s.cache != nil {
		key := s.cache.GenerateKey("create", order.IdempotencyKey)
		won, err := s.cache.Claim(ctx, key, order.ID, idempotencyTTL)
		if err != nil {
			slog.WarnContext(ctx, "idempotency cache unavailable, creating without replay protection",
				"idempotency_key", order.IdempotencyKey, "error", err)
		} else if !won {
			return s.replay(ctx, key)
		}
	}

	s.mu.Lock()
	s.orders[order.ID] = order
	s.mu.Unlock()

	slog.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"customer_id", order.CustomerID,
		"items", len(order.Items),
		"total", order.TotalAmount,
	)
	return order, false, nil
}

func (s *OrderServer) replay(ctx context.Context, key string) (*domain.Order, bool, error) {
	id, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	existing, err := s.GetOrder(ctx, id)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return nil, false, ErrRequestInFlight
	}
	if err != nil {
		return nil, false, err
	}
	slog.InfoContext(ctx, "idempotent replay", "order_id", existing.ID)
	return existing, true, nil
}

func (s *OrderServer) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}
