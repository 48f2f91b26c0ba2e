package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/loziogigio/omnicommerce/pkg/config"
	"github.com/loziogigio/omnicommerce/pkg/database"
	"github.com/loziogigio/omnicommerce/pkg/middleware"
	"github.com/loziogigio/omnicommerce/pkg/tracing"
)

// Search engines.
const (
	EngineSolr          = "solr"
	EngineElasticsearch = "elasticsearch"
	EngineMemory        = "memory"
)

// Empty wishlist policies.
const (
	WishlistUnfiltered = "unfiltered"
	WishlistNoResults  = "no_results"
)

// Cache backends.
const (
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

// Config holds all configuration for the catalogue service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Version     string `env:"SERVICE_VERSION" envDefault:"0.1.0"`

	HTTPPort int `env:"CATALOGUE_HTTP_PORT" envDefault:"8020"`

	// Search index
	SearchEngine       string        `env:"SEARCH_ENGINE" envDefault:"solr"`
	SolrURL            string        `env:"SOLR_URL" envDefault:"http://localhost:8983/solr"`
	SolrCore           string        `env:"SOLR_CORE" envDefault:"products"`
	ElasticsearchURL   string        `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200"`
	ElasticsearchIndex string        `env:"ELASTICSEARCH_INDEX" envDefault:"omnicommerce_products"`
	SearchTimeout      time.Duration `env:"SEARCH_TIMEOUT" envDefault:"3s"`
	MemorySeedFile     string        `env:"MEMORY_SEED_FILE"`

	// Catalogue behaviour
	DefaultPerPage      int    `env:"CATALOGUE_DEFAULT_PER_PAGE" envDefault:"12"`
	MaxPerPage          int    `env:"CATALOGUE_MAX_PER_PAGE" envDefault:"100"`
	EmptyWishlistPolicy string `env:"EMPTY_WISHLIST_POLICY" envDefault:"unfiltered"`
	ImageBaseURI        string `env:"IMAGE_BASE_URI" envDefault:"https://media.localhost/images"`
	WebsiteDomain       string `env:"WEBSITE_DOMAIN" envDefault:"https://localhost"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"change-me-in-production"`

	// Postgres
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"omnicommerce"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"omnicommerce"`
	DBName     string `env:"DB_NAME" envDefault:"omnicommerce"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMigrate  bool   `env:"DB_MIGRATE" envDefault:"false"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	CacheBackend     string        `env:"CACHE_BACKEND" envDefault:"redis"`
	TopItemsCacheTTL time.Duration `env:"TOP_ITEMS_CACHE_TTL" envDefault:"24h"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"catalogue-service"`

	// Guest rate limit
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"100"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from a local .env file, when present, and the
// environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, ".env"); err != nil {
		return nil, fmt.Errorf("load catalogue config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.SearchEngine {
	case EngineSolr, EngineElasticsearch, EngineMemory:
	default:
		return fmt.Errorf("unknown SEARCH_ENGINE %q", c.SearchEngine)
	}
	if c.SearchTimeout <= 0 || c.SearchTimeout > 30*time.Second {
		return fmt.Errorf("SEARCH_TIMEOUT must be within (0, 30s], got %s", c.SearchTimeout)
	}
	if c.MaxPerPage < 1 {
		return fmt.Errorf("CATALOGUE_MAX_PER_PAGE must be positive, got %d", c.MaxPerPage)
	}
	if c.DefaultPerPage < 1 || c.DefaultPerPage > c.MaxPerPage {
		return fmt.Errorf("CATALOGUE_DEFAULT_PER_PAGE must be within [1, %d], got %d", c.MaxPerPage, c.DefaultPerPage)
	}
	switch c.EmptyWishlistPolicy {
	case WishlistUnfiltered, WishlistNoResults:
	default:
		return fmt.Errorf("unknown EMPTY_WISHLIST_POLICY %q", c.EmptyWishlistPolicy)
	}
	switch c.CacheBackend {
	case CacheRedis, CacheMemory:
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	if c.TopItemsCacheTTL <= 0 {
		return fmt.Errorf("TOP_ITEMS_CACHE_TTL must be positive, got %s", c.TopItemsCacheTTL)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit must be positive, got %v rps burst %d", c.RateLimitRPS, c.RateLimitBurst)
	}
	if _, err := middleware.ParseTrustedProxies(c.TrustedProxies); err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	return nil
}

// Postgres returns the pool configuration.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.DBHost,
		Port:            c.DBPort,
		User:            c.DBUser,
		Password:        c.DBPassword,
		DBName:          c.DBName,
		SSLMode:         c.DBSSLMode,
		MaxConns:        c.DBMaxConns,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 15 * time.Minute,
	}
}

// Redis returns the redis client configuration.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:         c.RedisHost,
		Port:         c.RedisPort,
		Password:     c.RedisPassword,
		DB:           c.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
}

// RateLimit returns the guest rate limit. TrustedProxies were checked by Load.
func (c *Config) RateLimit() middleware.RateLimitConfig {
	proxies, _ := middleware.ParseTrustedProxies(c.TrustedProxies)
	return middleware.RateLimitConfig{
		RPS:            c.RateLimitRPS,
		Burst:          c.RateLimitBurst,
		TrustedProxies: proxies,
	}
}

// Tracing returns the OpenTelemetry configuration for serviceName.
func (c *Config) Tracing(serviceName string) tracing.Config {
	return tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		OTLPEndpoint:   c.OTELEndpoint,
		SampleRate:     c.OTELSampleRate,
		Enabled:        c.OTELEnabled,
	}
}
