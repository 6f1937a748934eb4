package httpapi

import (
	"net/http"

	"orderdesk/internal/logger"
	"orderdesk/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func NewRouter(products ProductService, orders OrderService) *chi.Mux {
	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	ph := NewProductHandler(products)
	oh := NewOrderHandler(orders)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", ph.List)
			r.Post("/", ph.Create)
			r.Get("/{id}", ph.Get)
			r.Patch("/{id}/stock", ph.AdjustStock)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", oh.List)
			r.Post("/", oh.Create)
			r.Get("/{id}", oh.Get)
			r.Post("/{id}/confirm", oh.Confirm)
			r.Post("/{id}/cancel", oh.Cancel)
			r.Post("/{id}/complete", oh.Complete)
		})
	})

	return r
}
