// Package reqmeta carries request correlation values (request id, session id)
// through a context.Context and names the HTTP headers they travel in.
package reqmeta

import "context"

const (
	HeaderXRequestID      = "X-Request-Id"
	HeaderXIdempotencyKey = "X-Idempotency-Key"
	HeaderXSessionID      = "X-Session-Id"
)

type contextKey string

const (
	keyRequestID contextKey = "request_id"
	keySessionID contextKey = "session_id"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keySessionID, id)
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)
	return id
}

// SessionID returns the session id stored in ctx, or "".
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(keySessionID).(string)
	return id
}
