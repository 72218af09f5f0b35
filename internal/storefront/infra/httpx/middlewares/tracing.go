package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/reqmeta"
)

// AttachRequestMetadata copies chi's request id into the context under the
// reqmeta key so outbound calls can forward it.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		ctx := reqmeta.WithRequestID(r.Context(), requestID)
		w.Header().Set(reqmeta.HeaderXRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
