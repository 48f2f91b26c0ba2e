// Package repository declares the collaborator stores the catalogue reads
// from besides the search index.
package repository

import (
	"context"
	"time"

	"github.com/loziogigio/omnicommerce/internal/domain"
)

// WishlistRepository returns the item codes a user saved.
type WishlistRepository interface {
	ItemsFor(ctx context.Context, userID string) ([]string, error)
}

// FeatureRepository serves technical features and their units of measure.
type FeatureRepository interface {
	ListBySKU(ctx context.Context, sku string) ([]domain.Feature, error)
	// UnitsByFamilyCodes maps feature names to their unit of measure for the
	// given product families. When families disagree the first code wins.
	UnitsByFamilyCodes(ctx context.Context, familyCodes []string) (map[string]string, error)
}

// ReviewRepository serves customer reviews.
type ReviewRepository interface {
	ListBySKU(ctx context.Context, sku string) ([]domain.Review, error)
}

// MenuRepository looks up storefront menu entries. A missing label is
// apperrors.ErrNotFound.
type MenuRepository interface {
	DetailFor(ctx context.Context, label string) (*domain.MenuDetail, error)
}

// WebsiteItemRepository looks up published item copy. A missing item is
// apperrors.ErrNotFound.
type WebsiteItemRepository interface {
	GetByItemCode(ctx context.Context, itemCode string) (*domain.WebsiteItem, error)
}

// SalesRepository aggregates submitted sales orders.
type SalesRepository interface {
	TopItems(ctx context.Context, from, to time.Time, limit int) ([]domain.TopItem, error)
}
