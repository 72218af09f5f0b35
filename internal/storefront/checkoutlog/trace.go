package checkoutlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo reads the active span from ctx. Both fields are empty when
// the context carries no valid span (unit tests, tracing disabled).
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds an entry stamped with the trace info found in ctx.
//
//	entry := checkoutlog.NewEntry(ctx, key, customerID, checkoutlog.StatusSubmitted)
//	entry.Payload = string(body)
//	_ = repo.Save(ctx, entry)
func NewEntry(ctx context.Context, submissionID, customerID string, status Status) *Entry {
	ti := ExtractTraceInfo(ctx)
	return &Entry{
		SubmissionID: submissionID,
		CustomerID:   customerID,
		Status:       status,
		TraceID:      ti.TraceID,
		SpanID:       ti.SpanID,
		RecordedAt:   time.Now().UTC(),
	}
}
