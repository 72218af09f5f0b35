package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/session"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/infra/httpx/middlewares"
)

func NewRouter(handler *Handler, registry *session.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Health)
	r.Get("/catalog", handler.ListProducts)
	r.Get("/checkout/log", handler.ListCheckoutLog)
	r.Get("/checkout/log/{submissionId}", handler.GetSubmissionLog)

	// Reads never create sessions.
	r.With(middlewares.PeekSession(registry)).Get("/cart", handler.GetCart)

	r.Group(func(r chi.Router) {
		r.Use(middlewares.LoadSession(registry))

		r.Post("/cart/items", handler.AddItem)
		r.Delete("/cart/items/{productId}", handler.RemoveItem)
		r.Put("/checkout/address/{field}", handler.UpdateAddressField)
		r.Post("/checkout", handler.SubmitOrder)
	})

	return otelhttp.NewHandler(r, "storefront")
}
