package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/loziogigio/omnicommerce/internal/cache"
	"github.com/loziogigio/omnicommerce/internal/config"
	"github.com/loziogigio/omnicommerce/internal/engine"
	esengine "github.com/loziogigio/omnicommerce/internal/engine/elasticsearch"
	"github.com/loziogigio/omnicommerce/internal/engine/memory"
	"github.com/loziogigio/omnicommerce/internal/engine/solr"
	"github.com/loziogigio/omnicommerce/internal/mapper"
	"github.com/loziogigio/omnicommerce/internal/media"
	"github.com/loziogigio/omnicommerce/internal/query"
	pgrepo "github.com/loziogigio/omnicommerce/internal/repository/postgres"
	"github.com/loziogigio/omnicommerce/internal/service"
	"github.com/loziogigio/omnicommerce/migrations"
	"github.com/loziogigio/omnicommerce/pkg/database"
	"github.com/loziogigio/omnicommerce/pkg/httpclient"
)

// ServiceName identifies the process in logs, metrics and traces.
const ServiceName = "catalogue-service"

const slowQueryThreshold = 500 * time.Millisecond

// Graph is the process-scoped set of connections and services shared by the
// HTTP server and the CLI.
type Graph struct {
	Engine    *engine.Instrumented
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	Store     cache.Store
	Catalogue *service.CatalogueService
	TopItems  *service.TopItemsService
}

// Build connects to every backing store named in cfg and wires the services.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Graph, error) {
	eng, err := NewEngine(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize PostgreSQL connection pool.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.DBHost),
		slog.Int("port", cfg.DBPort),
		slog.String("database", cfg.DBName),
	)
	database.RegisterPoolMetrics(pool, ServiceName)
	database.SetSlowQueryLogging(slowQueryThreshold, logger)

	if cfg.DBMigrate {
		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}

	g := &Graph{Engine: eng, Pool: pool}

	switch cfg.CacheBackend {
	case config.CacheRedis:
		rdb, err := database.NewRedisClient(ctx, cfg.Redis(), logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.Redis().Addr()),
			slog.Int("db", cfg.RedisDB),
		)
		g.Redis = rdb
		g.Store = cache.NewRedisStore(rdb)
	default:
		g.Store = cache.NewMemoryStore()
		logger.Info("in-memory cache initialized")
	}

	g.Catalogue = service.NewCatalogueService(
		eng,
		mapper.New(media.NewResolver(cfg.ImageBaseURI)),
		service.Collaborators{
			Wishlists:    pgrepo.NewWishlistRepository(pool),
			Features:     pgrepo.NewFeatureRepository(pool),
			Reviews:      pgrepo.NewReviewRepository(pool),
			Menus:        pgrepo.NewMenuRepository(pool, cfg.WebsiteDomain),
			WebsiteItems: pgrepo.NewWebsiteItemRepository(pool),
		},
		QueryOptions(cfg),
		logger,
	)
	g.TopItems = service.NewTopItemsService(pgrepo.NewSalesRepository(pool), g.Store, cfg.TopItemsCacheTTL, logger)

	return g, nil
}

// Close releases the connections held by the graph.
func (g *Graph) Close() error {
	var errs []error
	if g.Redis != nil {
		if err := g.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if g.Pool != nil {
		g.Pool.Close()
	}
	return errors.Join(errs...)
}

// QueryOptions maps the catalogue settings onto the query builder.
func QueryOptions(cfg *config.Config) query.Options {
	return query.Options{
		DefaultPerPage: cfg.DefaultPerPage,
		MaxPerPage:     cfg.MaxPerPage,
		EmptyWishlist:  query.WishlistPolicy(cfg.EmptyWishlistPolicy),
	}
}

// NewEngine creates the configured search engine wrapped with the per-call
// deadline and metrics.
func NewEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*engine.Instrumented, error) {
	var eng engine.Engine
	switch cfg.SearchEngine {
	case config.EngineSolr:
		httpCfg := httpclient.DefaultConfig()
		httpCfg.Timeout = cfg.SearchTimeout
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpCfg),
			httpclient.DefaultCircuitBreakerConfig("solr"),
			logger,
		)
		s, err := solr.New(client, cfg.SolrURL, cfg.SolrCore, logger)
		if err != nil {
			return nil, fmt.Errorf("init solr engine: %w", err)
		}
		eng = s
		logger.Info("solr search engine initialized",
			slog.String("url", cfg.SolrURL),
			slog.String("core", cfg.SolrCore),
		)
	case config.EngineElasticsearch:
		es, err := esengine.New(ctx, cfg.ElasticsearchURL, cfg.ElasticsearchIndex, logger)
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch engine: %w", err)
		}
		eng = es
		logger.Info("elasticsearch search engine initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("index", cfg.ElasticsearchIndex),
		)
	default:
		m := memory.New()
		if cfg.MemorySeedFile != "" {
			if err := seedMemory(m, cfg.MemorySeedFile); err != nil {
				return nil, err
			}
		}
		eng = m
		logger.Info("in-memory search engine initialized", slog.Int("documents", m.Len()))
	}

	return engine.Instrument(eng, cfg.SearchTimeout), nil
}

func seedMemory(m *memory.Engine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open memory seed file: %w", err)
	}
	defer f.Close()

	if err := m.Load(f); err != nil {
		return fmt.Errorf("seed memory engine from %s: %w", path, err)
	}
	return nil
}
