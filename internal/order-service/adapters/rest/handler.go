package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/ecommerce-storefront/internal/order-service/adapters/rest/dto"
	"github.com/jcmexdev/ecommerce-storefront/internal/order-service/adapters/rest/mappers"
	"github.com/jcmexdev/ecommerce-storefront/internal/order-service/app"
	"github.com/jcmexdev/ecommerce-storefront/internal/order-service/domain"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/reqmeta"
)

const maxBodyBytes = 1 << 20

type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, bool, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
}

type Handler struct {
	orders OrderStore
}

func NewHandler(orders OrderStore) *Handler {
	return &Handler{orders: orders}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	order := mappers.OrderFromRequest(r.Context(), &req, r.Header.Get(reqmeta.HeaderXIdempotencyKey))
	created, replayed, err := h.orders.CreateOrder(r.Context(), order)

	var invalid *domain.InvalidOrderError
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, "invalid_order", invalid.Reason)
		return
	case errors.Is(err, app.ErrRequestInFlight):
		writeError(w, http.StatusConflict, "in_flight", err.Error())
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "create order failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not create order")
		return
	}

	if replayed {
		w.Header().Set("Idempotent-Replayed", "true")
	}
	writeJSON(w, http.StatusCreated, mappers.OrderToResponse(created))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, mappers.OrderToResponse(order))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: code, Message: msg})
}
