package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/loziogigio/omnicommerce/internal/domain"
)

// --- Mock Wishlist Repository ---

type mockWishlistRepository struct {
	mock.Mock
}

func (m *mockWishlistRepository) ItemsFor(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- Mock Feature Repository ---

type mockFeatureRepository struct {
	mock.Mock
}

func (m *mockFeatureRepository) ListBySKU(ctx context.Context, sku string) ([]domain.Feature, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Feature), args.Error(1)
}

func (m *mockFeatureRepository) UnitsByFamilyCodes(ctx context.Context, codes []string) (map[string]string, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

// --- Mock Review Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) ListBySKU(ctx context.Context, sku string) ([]domain.Review, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

// --- Mock Menu Repository ---

type mockMenuRepository struct {
	mock.Mock
}

func (m *mockMenuRepository) DetailFor(ctx context.Context, label string) (*domain.MenuDetail, error) {
	args := m.Called(ctx, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MenuDetail), args.Error(1)
}

// --- Mock Website Item Repository ---

type mockWebsiteItemRepository struct {
	mock.Mock
}

func (m *mockWebsiteItemRepository) GetByItemCode(ctx context.Context, code string) (*domain.WebsiteItem, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WebsiteItem), args.Error(1)
}

// --- Mock Sales Repository ---

type mockSalesRepository struct {
	mock.Mock
}

func (m *mockSalesRepository) TopItems(ctx context.Context, from, to time.Time, limit int) ([]domain.TopItem, error) {
	args := m.Called(ctx, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TopItem), args.Error(1)
}
