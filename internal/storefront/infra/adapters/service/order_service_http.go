package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/reqmeta"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// HTTPOrderService is the adapter that talks to the remote order endpoint.
type HTTPOrderService struct {
	client   *http.Client
	endpoint string
}

var _ ports.OrderService = (*HTTPOrderService)(nil)

// NewHTTPOrderClient posts orders to endpoint. A nil client gets an
// otelhttp-instrumented default with the given timeout (0 disables it).
func NewHTTPOrderClient(endpoint string, client *http.Client, timeout time.Duration) ports.OrderService {
	if client == nil {
		client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		}
	}
	return &HTTPOrderService{client: client, endpoint: endpoint}
}

// CreateOrder sends the request as JSON. Non-2xx statuses, undecodable bodies
// and bodies without an id are all errors.
func (s *HTTPOrderService) CreateOrder(ctx context.Context, req entity.OrderRequest) (*entity.OrderReceipt, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("http CreateOrder: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http CreateOrder: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set(reqmeta.HeaderXIdempotencyKey, req.IdempotencyKey)
	}
	if id := reqmeta.RequestID(ctx); id != "" {
		httpReq.Header.Set(reqmeta.HeaderXRequestID, id)
	}

	res, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http CreateOrder: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, fmt.Errorf("http CreateOrder: unexpected status %d: %s", res.StatusCode, bytes.TrimSpace(detail))
	}

	var receipt entity.OrderReceipt
	if err := json.NewDecoder(res.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("http CreateOrder: decode response: %w", err)
	}
	if receipt.ID == "" {
		return nil, fmt.Errorf("http CreateOrder: response has no order id")
	}

	return &receipt, nil
}
