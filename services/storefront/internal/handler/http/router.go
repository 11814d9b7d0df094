package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/FreshMarket/pkg/health"
	"github.com/utafrali/FreshMarket/pkg/middleware"
	"github.com/utafrali/FreshMarket/services/storefront/internal/service"
)

// RouterConfig carries the cross-cutting pieces the router mounts.
type RouterConfig struct {
	TokenValidator middleware.TokenValidator
	CORS           middleware.CORSConfig
	// RateLimit is mounted after Auth so buckets are keyed by session. Nil
	// disables rate limiting.
	RateLimit func(http.Handler) http.Handler
}

// buyerRoles may hold carts, check out and keep comparison and favorites.
var buyerRoles = []string{middleware.RoleBuyerOwner, middleware.RoleBuyerManager, middleware.RoleAdmin}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	svc *service.StorefrontService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	h := NewStorefrontHandler(svc, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(cfg.TokenValidator))
		r.Use(middleware.RequestLogger(logger))
		r.Use(ForwardToken)
		if cfg.RateLimit != nil {
			r.Use(cfg.RateLimit)
		}

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.ListNotifications)
			r.Delete("/", h.ClearNotifications)
			r.Post("/read", h.MarkAllNotificationsRead)
			r.Post("/{id}/read", h.MarkNotificationRead)
			r.Delete("/{id}", h.RemoveNotification)
		})

		r.Post("/pricing/quote", h.Quote)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(buyerRoles...))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Delete("/", h.ClearCart)

				r.Post("/items", h.AddItem)
				r.Post("/items/bulk", h.AddBulk)
				r.Put("/items", h.BulkUpdateQuantities)
				r.Delete("/items", h.RemoveBulk)
				r.Put("/items/{itemId}", h.UpdateQuantity)
				r.Delete("/items/{itemId}", h.RemoveItem)

				r.Post("/listings/{listingId}", h.AddListing)

				r.Put("/open", h.SetOpen)
				r.Post("/open/toggle", h.ToggleOpen)

				r.Get("/summary", h.CartSummary)
				r.Post("/checkout", h.Checkout)
			})

			r.Route("/comparison", func(r chi.Router) {
				r.Get("/", h.GetComparison)
				r.Delete("/", h.ClearComparison)
				r.Post("/{listingId}", h.AddToComparison)
				r.Delete("/{listingId}", h.RemoveFromComparison)
			})

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", h.GetFavorites)
				r.Delete("/", h.ClearFavorites)
				r.Post("/{listingId}", h.ToggleFavorite)
				r.Delete("/{listingId}", h.RemoveFavorite)
			})
		})
	})

	return r
}
