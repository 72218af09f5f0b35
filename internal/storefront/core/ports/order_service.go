package ports

import (
	"context"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

// OrderService creates an order on the remote order endpoint. Any returned
// error is a transport failure from the storefront's point of view.
type OrderService interface {
	CreateOrder(ctx context.Context, req entity.OrderRequest) (*entity.OrderReceipt, error)
}
