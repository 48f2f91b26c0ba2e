package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/loziogigio/omnicommerce/internal/cache"
	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/internal/repository"
	apperrors "github.com/loziogigio/omnicommerce/pkg/errors"
	"github.com/loziogigio/omnicommerce/pkg/logger"
)

// TopItemsOperation prefixes every top-selling cache key.
const TopItemsOperation = "top_items"

// Top-selling window and size limits.
const (
	DefaultDaysBack = 30
	DefaultTopLimit = 30
	MaxDaysBack     = 365
	MaxTopLimit     = 100
)

// TopItemsService serves the best-selling items of a recent window through
// a day-salted read-through cache.
type TopItemsService struct {
	sales  repository.SalesRepository
	cache  *cache.ReadThrough[[]domain.TopItem]
	now    func() time.Time
	logger *slog.Logger
}

// NewTopItemsService creates a new top-selling items service.
func NewTopItemsService(sales repository.SalesRepository, store cache.Store, ttl time.Duration, logger *slog.Logger, opts ...cache.Option) *TopItemsService {
	return &TopItemsService{
		sales:  sales,
		cache:  cache.NewReadThrough[[]domain.TopItem](store, TopItemsOperation, ttl, logger, opts...),
		now:    time.Now,
		logger: logger,
	}
}

// TopItems returns up to limit items ranked by quantity sold over the last
// daysBack days.
func (s *TopItemsService) TopItems(ctx context.Context, daysBack, limit int) ([]domain.TopItem, error) {
	if daysBack < 1 || daysBack > MaxDaysBack {
		return nil, apperrors.InvalidInput(fmt.Sprintf("days_back must be between 1 and %d", MaxDaysBack))
	}
	if limit < 1 || limit > MaxTopLimit {
		return nil, apperrors.InvalidInput(fmt.Sprintf("top_limit must be between 1 and %d", MaxTopLimit))
	}

	load := func(ctx context.Context) ([]domain.TopItem, error) {
		to := s.now()
		from := to.AddDate(0, 0, -daysBack)
		items, err := s.sales.TopItems(ctx, from, to, limit)
		if err != nil {
			s.logger.ErrorContext(ctx, "upstream call failed",
				slog.String("operation", "sales.top_items"),
				slog.Int("days_back", daysBack),
				slog.Int("top_limit", limit),
				logger.Err(err),
			)
			return nil, apperrors.Unavailable("sales database", err)
		}
		return items, nil
	}

	return s.cache.Get(ctx, load, strconv.Itoa(limit), strconv.Itoa(daysBack))
}

// Invalidate drops every cached ranking.
func (s *TopItemsService) Invalidate(ctx context.Context) (int, error) {
	n, err := s.cache.Invalidate(ctx)
	if err != nil {
		return n, fmt.Errorf("invalidate top items cache: %w", err)
	}
	return n, nil
}
