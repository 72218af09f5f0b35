// Package sqlite provides a SQLite-backed checkoutlog.Repository.
//
// WAL mode is enabled on Open so diagnostics reads never block the submission
// path that writes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/checkoutlog"

	// Pure-Go driver, no CGO.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkout_log (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Idempotency key of the attempt. One SUBMITTED row plus one outcome row.
    submission_id  TEXT    NOT NULL,

    customer_id    TEXT    NOT NULL DEFAULT '',
    status         TEXT    NOT NULL,
    order_id       TEXT    NOT NULL DEFAULT '',

    -- JSON request body. Only on SUBMITTED rows.
    payload        TEXT,

    error          TEXT    NOT NULL DEFAULT '',
    trace_id       TEXT    NOT NULL DEFAULT '',
    span_id        TEXT    NOT NULL DEFAULT '',

    -- RFC3339 TEXT.
    recorded_at    TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checkout_log_submission ON checkout_log(submission_id, recorded_at);
CREATE INDEX IF NOT EXISTS idx_checkout_log_customer ON checkout_log(customer_id, recorded_at);
`

// Repository is the SQLite implementation of checkoutlog.Repository.
type Repository struct {
	db *sql.DB
}

var (
	_ checkoutlog.Repository = (*Repository)(nil)
	_ checkoutlog.Reader     = (*Repository)(nil)
)

// Open opens (or creates) the database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/checkout.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// Single writer.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends an entry. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *checkoutlog.Entry) error {
	const q = `
		INSERT INTO checkout_log
			(submission_id, customer_id, status, order_id, payload, error, trace_id, span_id, recorded_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.SubmissionID,
		entry.CustomerID,
		string(entry.Status),
		entry.OrderID,
		nullableString(entry.Payload),
		entry.Error,
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save checkout log for %q: %w", entry.SubmissionID, err)
	}
	return nil
}

// GetLatest returns the most recent entry for a submission.
func (r *Repository) GetLatest(ctx context.Context, submissionID string) (*checkoutlog.Entry, error) {
	const q = `
		SELECT submission_id, customer_id, status, order_id, COALESCE(payload,''), error,
		       trace_id, span_id, recorded_at
		FROM   checkout_log
		WHERE  submission_id = ?
		ORDER  BY recorded_at DESC, id DESC
		LIMIT  1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, q, submissionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", checkoutlog.ErrNotFound, submissionID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for %q: %w", submissionID, err)
	}
	return entry, nil
}

// ListByCustomer returns a customer's entries, oldest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*checkoutlog.Entry, error) {
	const q = `
		SELECT submission_id, customer_id, status, order_id, COALESCE(payload,''), error,
		       trace_id, span_id, recorded_at
		FROM   checkout_log
		WHERE  customer_id = ?
		ORDER  BY recorded_at ASC, id ASC
		LIMIT  ?`

	rows, err := r.db.QueryContext(ctx, q, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list for customer %q: %w", customerID, err)
	}
	defer rows.Close()

	var out []*checkoutlog.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan checkout log: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list for customer %q: %w", customerID, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*checkoutlog.Entry, error) {
	var entry checkoutlog.Entry
	var recordedAt string
	err := s.Scan(
		&entry.SubmissionID,
		&entry.CustomerID,
		&entry.Status,
		&entry.OrderID,
		&entry.Payload,
		&entry.Error,
		&entry.TraceID,
		&entry.SpanID,
		&recordedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.RecordedAt, err = parseRFC3339(recordedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// nullableString stores NULL rather than '' for absent payloads.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
