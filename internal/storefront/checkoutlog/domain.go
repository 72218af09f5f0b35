// Package checkoutlog defines the submission journal: an append-only record of
// every order submission that reached the network.
//
// Each attempt produces a SUBMITTED row carrying the request payload and then
// exactly one SUCCEEDED or FAILED row. Rows carry the trace_id of the active
// span so a row can be followed to the distributed trace of the attempt.
package checkoutlog

import "time"

// Status is the lifecycle state recorded by a journal entry.
type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// Entry is a single row in the checkout_log table.
type Entry struct {
	// SubmissionID identifies one attempt. It is the idempotency key sent to
	// the order endpoint.
	SubmissionID string

	CustomerID string
	Status     Status

	// OrderID is set on SUCCEEDED rows only.
	OrderID string

	// Payload is the JSON order request, written on SUBMITTED rows only.
	Payload string

	// Error holds the transport failure detail on FAILED rows. It is never
	// shown to the shopper.
	Error string

	TraceID string
	SpanID  string

	RecordedAt time.Time
}
