package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/reqmeta"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/session"
)

type sessionKey struct{}

// LoadSession resolves the X-Session-Id header to a session, creating one when
// the header is missing or unknown. The effective id is echoed back.
func LoadSession(registry *session.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, created := registry.GetOrCreate(r.Header.Get(reqmeta.HeaderXSessionID))
			if created {
				slog.InfoContext(r.Context(), "session created", "session_id", s.ID())
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, s)
			ctx = reqmeta.WithSessionID(ctx, s.ID())
			w.Header().Set(reqmeta.HeaderXSessionID, s.ID())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PeekSession attaches the session named by X-Session-Id without creating one.
// Unknown shoppers get an empty detached session and no session header.
func PeekSession(registry *session.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			s, ok := registry.Get(r.Header.Get(reqmeta.HeaderXSessionID))
			if ok {
				ctx = reqmeta.WithSessionID(ctx, s.ID())
				w.Header().Set(reqmeta.HeaderXSessionID, s.ID())
			} else {
				s = registry.Detached()
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, sessionKey{}, s)))
		})
	}
}

// SessionFrom returns the session attached by LoadSession or PeekSession. It
// panics when the route was wrapped by neither.
func SessionFrom(ctx context.Context) *session.Session {
	s, ok := ctx.Value(sessionKey{}).(*session.Session)
	if !ok {
		panic("middlewares: no session in context")
	}
	return s
}
