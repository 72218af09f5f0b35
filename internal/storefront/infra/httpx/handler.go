package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/catalog"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/checkoutlog"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/session"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/infra/httpx/middlewares"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

// Handler exposes the shopper session to the presentation layer and the
// checkout journal to diagnostics.
type Handler struct {
	catalog    *catalog.Catalog
	journal    checkoutlog.Reader // nil when the journal is disabled
	customerID string
}

func NewHandler(c *catalog.Catalog, journal checkoutlog.Reader, customerID string) *Handler {
	return &Handler{catalog: c, journal: journal, customerID: customerID}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.Products()
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = ProductResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Image:       p.Image,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := middlewares.SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, mapSessionToResponse(s))
}

// AddItem adds one unit of a catalog product to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "productId is required")
		return
	}

	product, ok := h.catalog.Find(req.ProductID)
	if !ok {
		writeError(w, http.StatusNotFound, "product_not_found", req.ProductID)
		return
	}

	s := middlewares.SessionFrom(r.Context())
	s.AddItem(product)
	writeJSON(w, http.StatusOK, mapSessionToResponse(s))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := middlewares.SessionFrom(r.Context())
	s.RemoveItem(chi.URLParam(r, "productId"))
	writeJSON(w, http.StatusOK, mapSessionToResponse(s))
}

func (h *Handler) UpdateAddressField(w http.ResponseWriter, r *http.Request) {
	field, err := entity.ParseAddressField(chi.URLParam(r, "field"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_field", err.Error())
		return
	}

	var req UpdateAddressFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	s := middlewares.SessionFrom(r.Context())
	if err := s.UpdateAddressField(field, req.Value); err != nil {
		writeError(w, http.StatusBadRequest, "unknown_field", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, mapSessionToResponse(s))
}

// SubmitOrder runs the checkout synchronously. Validation notices map to 422,
// a concurrent submission to 409; transport failures come back as a 200 view
// carrying a failure status.
//
// The order call is detached from client cancellation: once sent it runs to
// completion or failure, bounded only by the order client's timeout.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	s := middlewares.SessionFrom(r.Context())

	_, err := s.SubmitOrder(context.WithoutCancel(r.Context()))

	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		resp := ErrorResponse{Error: "validation_failed", Message: verr.Error()}
		if verr.Reason == checkout.ReasonMissingField {
			resp.Field = verr.Field.String()
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		writeError(w, http.StatusConflict, "submission_in_progress", "an order is already being processed")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "unexpected checkout error", "session_id", s.ID(), "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	writeJSON(w, http.StatusOK, mapSessionToResponse(s))
}

// GetSubmissionLog returns the newest journal row of one submission.
func (h *Handler) GetSubmissionLog(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusServiceUnavailable, "journal_disabled", "checkout log is not enabled")
		return
	}

	submissionID := chi.URLParam(r, "submissionId")
	entry, err := h.journal.GetLatest(r.Context(), submissionID)
	if errors.Is(err, checkoutlog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "submission_not_found", submissionID)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "checkout log lookup failed", "submission_id", submissionID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	writeJSON(w, http.StatusOK, mapEntryToResponse(entry))
}

// ListCheckoutLog returns the storefront customer's journal, oldest first.
// ?limit= accepts 1..500.
func (h *Handler) ListCheckoutLog(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusServiceUnavailable, "journal_disabled", "checkout log is not enabled")
		return
	}

	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLogLimit {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	entries, err := h.journal.ListByCustomer(r.Context(), h.customerID, limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "checkout log listing failed", "customer_id", h.customerID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	out := make([]JournalEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = mapEntryToResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func mapEntryToResponse(e *checkoutlog.Entry) JournalEntryResponse {
	resp := JournalEntryResponse{
		SubmissionID: e.SubmissionID,
		CustomerID:   e.CustomerID,
		Status:       string(e.Status),
		OrderID:      e.OrderID,
		Error:        e.Error,
		TraceID:      e.TraceID,
		SpanID:       e.SpanID,
		RecordedAt:   e.RecordedAt.UTC().Format(time.RFC3339Nano),
	}
	if e.Payload != "" && json.Valid([]byte(e.Payload)) {
		resp.Payload = json.RawMessage(e.Payload)
	}
	return resp
}

func mapSessionToResponse(s *session.Session) SessionResponse {
	snap := s.Snapshot()

	items := make([]LineItemResponse, len(snap.Items))
	for i, it := range snap.Items {
		items[i] = LineItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
		}
	}

	missing := snap.Address.MissingFields()
	missingNames := make([]string, len(missing))
	for i, f := range missing {
		missingNames[i] = f.String()
	}

	resp := SessionResponse{
		SessionID: s.ID(),
		Items:     items,
		Count:     snap.Count,
		Units:     snap.Units,
		Total:     snap.Total,
		ShippingAddress: AddressResponse{
			Street:  snap.Address.Street,
			City:    snap.Address.City,
			State:   snap.Address.State,
			ZipCode: snap.Address.ZipCode,
			Country: snap.Address.Country,
		},
		MissingFields: missingNames,
		Submitting:    snap.Submitting,
	}
	if !snap.Status.IsIdle() {
		resp.Status = &StatusResponse{
			Outcome:      snap.Status.Outcome.String(),
			Message:      snap.Status.Message,
			SubmissionID: snap.Status.SubmissionID,
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
