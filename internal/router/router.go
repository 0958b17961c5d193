package router

import (
	"net/http"

	"mini-eats/internal/handler"
	"mini-eats/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Catalog  *handler.CatalogHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Payment  *handler.PaymentHandler
	Orders   *handler.OrderHandler
	Account  *handler.AccountHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth -> Identity -> Session
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger, "/health"))
	r.Use(middleware.Identity(logger))
	r.Use(middleware.Session)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", h.Catalog.List)
			r.Get("/{slug}", h.Catalog.Get)
			r.Get("/{slug}/menu", h.Catalog.Menu)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.View)
			r.Delete("/", h.Cart.Clear)
			r.Post("/items", h.Cart.AddItem)
			r.Delete("/items/{productId}", h.Cart.RemoveItem)
		})

		r.Post("/checkout", h.Checkout.Submit)
		r.Get("/payments/{transactionId}", h.Payment.Verify)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.List)
			r.Get("/{id}", h.Orders.GetByID)
			r.Post("/{id}/status", h.Orders.UpdateStatus)
			r.Post("/{id}/cancel", h.Orders.Cancel)
			r.Post("/{id}/review", h.Orders.Review)
		})

		r.Get("/profile", h.Account.Profile)
		r.Post("/profile", h.Account.Register)
		r.Get("/dashboard", h.Account.Dashboard)
	})

	return r
}
