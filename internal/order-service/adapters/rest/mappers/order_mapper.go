package mappers

import (
	"context"
	"time"

	"github.com/jcmexdev/ecommerce-storefront/internal/order-service/adapters/rest/dto"
	"github.com/jcmexdev/ecommerce-storefront/internal/order-service/domain"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/reqmeta"
)

// OrderFromRequest builds an unsaved order. The idempotency key comes from the
// request header, the request id from ctx.
func OrderFromRequest(ctx context.Context, req *dto.CreateOrderRequest, idempotencyKey string) *domain.Order {
	if req == nil {
		return nil
	}

	return &domain.Order{
		CustomerID:      req.CustomerID,
		Items:           mapItemsFromRequest(req.Items),
		TotalAmount:     req.TotalAmount,
		ShippingAddress: domain.ShippingAddress(req.ShippingAddress),
		IdempotencyKey:  idempotencyKey,
		RequestID:       reqmeta.RequestID(ctx),
	}
}

func OrderToResponse(o *domain.Order) *dto.OrderResponse {
	if o == nil {
		return nil
	}

	return &dto.OrderResponse{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		Items:           mapItemsToResponse(o.Items),
		TotalAmount:     o.TotalAmount,
		ShippingAddress: dto.ShippingAddress(o.ShippingAddress),
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
	}
}

func mapItemsFromRequest(items []dto.OrderItem) []domain.OrderItem {
	out := make([]domain.OrderItem, len(items))
	for i, item := range items {
		out[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		}
	}
	return out
}

func mapItemsToResponse(items []domain.OrderItem) []dto.OrderItem {
	out := make([]dto.OrderItem, len(items))
	for i, item := range items {
		out[i] = dto.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
		}
	}
	return out
}
