package entity

type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderRequest is the body of the order-creation call.
type OrderRequest struct {
	CustomerID      string          `json:"customerId"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     float64         `json:"totalAmount"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`

	// IdempotencyKey is sent as a header, never in the body.
	IdempotencyKey string `json:"-"`
}

// OrderReceipt is the part of the remote response the storefront relies on.
type OrderReceipt struct {
	ID string `json:"id"`
}

// Outcome tags an OrderStatus.
type Outcome int

const (
	OutcomeIdle Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "idle"
	}
}

// OrderStatus is the user-facing result of the last submission attempt.
type OrderStatus struct {
	Outcome Outcome
	Message string
	// SubmissionID names the attempt that produced the status; empty when idle.
	SubmissionID string
}

func IdleStatus() OrderStatus {
	return OrderStatus{Outcome: OutcomeIdle}
}

func SuccessStatus(message string) OrderStatus {
	return OrderStatus{Outcome: OutcomeSuccess, Message: message}
}

func FailureStatus(message string) OrderStatus {
	return OrderStatus{Outcome: OutcomeFailure, Message: message}
}

func (s OrderStatus) IsIdle() bool { return s.Outcome == OutcomeIdle }
