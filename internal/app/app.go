package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/loziogigio/omnicommerce/internal/auth"
	"github.com/loziogigio/omnicommerce/internal/config"
	"github.com/loziogigio/omnicommerce/internal/event"
	handler "github.com/loziogigio/omnicommerce/internal/handler/http"
	"github.com/loziogigio/omnicommerce/pkg/health"
	pkgkafka "github.com/loziogigio/omnicommerce/pkg/kafka"
	"github.com/loziogigio/omnicommerce/pkg/logger"
	"github.com/loziogigio/omnicommerce/pkg/middleware"
	"github.com/loziogigio/omnicommerce/pkg/tracing"
)

const (
	idempotencyTTL  = 24 * time.Hour
	accessTokenTTL  = 15 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// App wires together all dependencies and runs the catalogue service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	graph          *Graph
	consumer       *pkgkafka.Consumer
	limiter        *middleware.RateLimiter
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing(ServiceName))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	graph, err := Build(ctx, cfg, logger)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, err
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("search_engine", graph.Engine.Ping)
	healthHandler.Register("postgres", graph.Pool.Ping)
	healthHandler.Register("cache", graph.Store.Ping)

	// Kafka consumer invalidating the top-selling cache.
	var consumer *pkgkafka.Consumer
	if cfg.KafkaEnabled {
		var idem pkgkafka.IdempotencyStore = pkgkafka.NewMemoryIdempotencyStore(idempotencyTTL)
		if graph.Redis != nil {
			idem = pkgkafka.NewRedisIdempotencyStore(graph.Redis, "catalogue:events:", idempotencyTTL)
		}
		consumer = event.NewOrderConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID,
			event.NewConsumerHandler(graph.TopItems, logger), idem, logger)
		healthHandler.RegisterOptional("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
		logger.Info("kafka consumer initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", consumer.Topic()),
		)
	}

	// HTTP router.
	limiter := middleware.NewRateLimiter(cfg.RateLimit(), logger)
	router := handler.NewRouter(graph.Catalogue, graph.TopItems, healthHandler, handler.RouterConfig{
		RateLimiter:    limiter,
		RequestTimeout: 30 * time.Second,
		Tokens:         auth.NewJWTManager(cfg.JWTSecret, accessTokenTTL).Validator(),
	}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		graph:          graph,
		consumer:       consumer,
		limiter:        limiter,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and the Kafka consumer, blocking until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", logger.Err(err))
		errs = append(errs, err)
	}

	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", logger.Err(err))
			errs = append(errs, err)
		}
	}
	a.limiter.Close()

	if err := a.graph.Close(); err != nil {
		a.logger.Error("connection close error", logger.Err(err))
		errs = append(errs, err)
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", logger.Err(err))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
