package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardhouse/storefront/internal/cartstate"
	"github.com/cardhouse/storefront/internal/catalog"
	"github.com/cardhouse/storefront/pkg/health"
	"github.com/cardhouse/storefront/pkg/middleware"
)

// RouterConfig carries the router's cross-cutting settings.
type RouterConfig struct {
	Environment        string
	CORSAllowedOrigins []string
	SecureCookies      bool
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	registry *cartstate.Registry,
	catalogService *catalog.Service,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: true,
		Environment:      cfg.Environment,
	}))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	cartHandler := NewCartHandler(registry, logger)
	productHandler := NewProductHandler(catalogService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(ShopperSession(cfg.SecureCookies))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/reload", cartHandler.Reload)
			r.Get("/checkout-url", cartHandler.CheckoutURL)

			r.Post("/lines", cartHandler.AddLine)
			r.Post("/lines/by-handle", cartHandler.AddByHandle)
			r.Post("/lines/{lineID}/increment", cartHandler.IncrementLine)
			r.Post("/lines/{lineID}/decrement", cartHandler.DecrementLine)
			r.Delete("/lines/{lineID}", cartHandler.RemoveLine)

			r.Post("/drawer/open", cartHandler.OpenDrawer)
			r.Post("/drawer/close", cartHandler.CloseDrawer)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/add-ons", productHandler.GetAddOns)
			r.Get("/{handle}", productHandler.GetProduct)
		})
	})

	return r
}
