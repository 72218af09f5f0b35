package httpx

import "encoding/json"

type AddItemRequest struct {
	ProductID string `json:"productId"`
}

type UpdateAddressFieldRequest struct {
	Value string `json:"value"`
}

type ProductResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

type LineItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type AddressResponse struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type StatusResponse struct {
	Outcome      string `json:"outcome"`
	Message      string `json:"message"`
	SubmissionID string `json:"submissionId,omitempty"`
}

// JournalEntryResponse is one checkout log row.
type JournalEntryResponse struct {
	SubmissionID string          `json:"submissionId"`
	CustomerID   string          `json:"customerId"`
	Status       string          `json:"status"`
	OrderID      string          `json:"orderId,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Error        string          `json:"error,omitempty"`
	TraceID      string          `json:"traceId,omitempty"`
	SpanID       string          `json:"spanId,omitempty"`
	RecordedAt   string          `json:"recordedAt"`
}

// SessionResponse is everything the presentation layer renders.
type SessionResponse struct {
	SessionID       string             `json:"sessionId"`
	Items           []LineItemResponse `json:"items"`
	Count           int                `json:"count"`
	Units           int                `json:"units"`
	Total           float64            `json:"total"`
	ShippingAddress AddressResponse    `json:"shippingAddress"`
	MissingFields   []string           `json:"missingFields"`
	Status          *StatusResponse    `json:"status,omitempty"`
	Submitting      bool               `json:"submitting"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}
