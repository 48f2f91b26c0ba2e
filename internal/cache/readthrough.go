package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/loziogigio/omnicommerce/pkg/logger"
)

var cacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalogue_cache_requests_total",
		Help: "Read-through cache lookups by result",
	},
	[]string{"operation", "result"},
)

// Cache lookup results reported in metrics.
const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

const dayLayout = "20060102"

// Loader produces the value for a cache miss.
type Loader[T any] func(ctx context.Context) (T, error)

// ReadThrough caches the JSON encoding of loader results under keys salted
// with the calendar day, so entries roll over at midnight even before their
// TTL expires.
type ReadThrough[T any] struct {
	store     Store
	operation string
	ttl       time.Duration
	now       func() time.Time
	log       *slog.Logger
}

// Option configures a ReadThrough.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the clock used to salt keys.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewReadThrough creates a cache for one operation.
func NewReadThrough[T any](store Store, operation string, ttl time.Duration, log *slog.Logger, opts ...Option) *ReadThrough[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &ReadThrough[T]{
		store:     store,
		operation: operation,
		ttl:       ttl,
		now:       o.now,
		log:       log,
	}
}

// Prefix is the key prefix shared by every entry of the operation.
func (c *ReadThrough[T]) Prefix() string {
	return c.operation + ":"
}

// Key builds operation:param...:YYYYMMDD.
func (c *ReadThrough[T]) Key(params ...string) string {
	parts := make([]string, 0, len(params)+2)
	parts = append(parts, c.operation)
	parts = append(parts, params...)
	parts = append(parts, c.now().Format(dayLayout))
	return strings.Join(parts, ":")
}

// Get returns the cached value for params or calls load and stores its
// result. Store failures are logged and never fail the call; loader errors
// are returned and not cached.
func (c *ReadThrough[T]) Get(ctx context.Context, load Loader[T], params ...string) (T, error) {
	key := c.Key(params...)

	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			cacheRequests.WithLabelValues(c.operation, resultHit).Inc()
			return v, nil
		}
		c.log.WarnContext(ctx, "discarding undecodable cache entry", slog.String("key", key))
		cacheRequests.WithLabelValues(c.operation, resultMiss).Inc()
	case errors.Is(err, ErrMiss):
		cacheRequests.WithLabelValues(c.operation, resultMiss).Inc()
	default:
		c.log.WarnContext(ctx, "cache read failed", slog.String("key", key), logger.Err(err))
		cacheRequests.WithLabelValues(c.operation, resultError).Inc()
	}

	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if data, err := json.Marshal(v); err != nil {
		c.log.WarnContext(ctx, "cache encode failed", slog.String("key", key), logger.Err(err))
	} else if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.log.WarnContext(ctx, "cache write failed", slog.String("key", key), logger.Err(err))
	}
	return v, nil
}

// Invalidate removes every entry of the operation.
func (c *ReadThrough[T]) Invalidate(ctx context.Context) (int, error) {
	return c.store.DeletePrefix(ctx, c.Prefix())
}
