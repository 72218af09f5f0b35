package checkoutlog

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a submission has no journal rows.
var ErrNotFound = errors.New("checkoutlog: submission not found")

// Repository persists journal entries. The orchestrator depends on this port,
// not on SQLite directly.
type Repository interface {
	// Save appends an entry; rows are never updated.
	Save(ctx context.Context, entry *Entry) error
}

// Reader serves the diagnostics endpoints.
type Reader interface {
	// GetLatest returns the newest entry of a submission or ErrNotFound.
	GetLatest(ctx context.Context, submissionID string) (*Entry, error)
	// ListByCustomer returns up to limit entries, oldest first.
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]*Entry, error)
}
