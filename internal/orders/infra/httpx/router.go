package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/selliq/order-engine/internal/orders/infra/httpx/middlewares"
)

// NewRouter mounts the order engine's HTTP surface. Static segments
// (customer/, seller/, seller-stats/, seller-earnings/, admin-stats)
// take precedence over the {id} parameter in chi's routing.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.RequireIdentity)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/customer/{customerId}", h.ListCustomerOrders)
		r.Get("/seller/{sellerId}", h.ListSellerOrders)
		r.Get("/seller-stats/{sellerId}", h.SellerStats)
		r.Get("/seller-earnings/{sellerId}", h.SellerEarnings)
		r.With(middlewares.RequireRole(middlewares.RoleAdmin)).Get("/admin-stats", h.AdminStats)

		r.Get("/{id}", h.GetOrder)
		r.With(middlewares.RequireRole(middlewares.RoleAdmin)).Patch("/{id}/status", h.OverrideStatus)
		r.Patch("/{id}/payment", h.RecordPayment)
		r.Post("/{id}/cancel", h.CancelOrder)
	})
	return r
}
