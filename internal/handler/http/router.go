package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loziogigio/omnicommerce/internal/service"
	"github.com/loziogigio/omnicommerce/pkg/health"
	"github.com/loziogigio/omnicommerce/pkg/middleware"
)

// ServiceName labels metrics and spans emitted by the router.
const ServiceName = "catalogue"

// RouterConfig tunes the global middleware chain.
type RouterConfig struct {
	RateLimiter    *middleware.RateLimiter
	RequestTimeout time.Duration
	Tokens         middleware.TokenValidator
}

// NewRouter creates a chi router with all catalogue routes registered.
func NewRouter(
	catalogueService *service.CatalogueService,
	topItemsService *service.TopItemsService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(ServiceName))
	if cfg.Tokens != nil {
		r.Use(middleware.OptionalAuth(cfg.Tokens))
	}
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.PrometheusMetrics(ServiceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	catalogueHandler := NewCatalogueHandler(catalogueService, logger)
	topItemsHandler := NewTopItemsHandler(topItemsService, logger)

	// Storefront endpoints, open to guests.
	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}
		r.Get("/catalogue", catalogueHandler.Catalogue)
		r.Get("/shop", catalogueHandler.Catalogue)
		r.Get("/products", catalogueHandler.Product)
		r.Get("/items/top-selling", topItemsHandler.TopSelling)
	})

	return r
}
