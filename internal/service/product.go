package service

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/internal/engine"
	"github.com/loziogigio/omnicommerce/internal/query"
	apperrors "github.com/loziogigio/omnicommerce/pkg/errors"
	"github.com/loziogigio/omnicommerce/pkg/slug"
)

const groupFieldPrefix = "group_"

// ProductBySlug assembles the product page of the document whose slug is
// productSlug.
func (s *CatalogueService) ProductBySlug(ctx context.Context, productSlug string) (*domain.ProductDetail, error) {
	productSlug = strings.TrimSpace(productSlug)
	if productSlug == "" {
		return nil, apperrors.InvalidInput("slug is required")
	}

	req := engine.NewRequest(query.BySlug(productSlug))
	req.StatsField = ""
	req.FacetFields = nil

	res, err := s.engine.Search(ctx, req)
	if err != nil {
		return nil, s.upstreamError(ctx, "product.lookup", "search index", err, slog.String("slug", productSlug))
	}
	if len(res.Hits) == 0 {
		return nil, apperrors.NotFound("product", productSlug)
	}

	hit := res.Hits[0]
	sku := hit.Text(query.SKUField)
	if sku == "" {
		return nil, apperrors.Mapping("product " + strconv.Quote(productSlug) + " has no sku")
	}
	view := s.mapper.MapHit(hit)

	related, err := s.familyProducts(ctx, view.FamilyCode)
	if err != nil {
		return nil, err
	}

	features, err := s.repos.Features.ListBySKU(ctx, sku)
	if err != nil {
		return nil, s.upstreamError(ctx, "features.list", "feature metadata", err, slog.String("sku", sku))
	}
	reviews, err := s.repos.Reviews.ListBySKU(ctx, sku)
	if err != nil {
		return nil, s.upstreamError(ctx, "reviews.list", "reviews", err, slog.String("sku", sku))
	}
	item, err := s.repos.WebsiteItems.GetByItemCode(ctx, sku)
	if err != nil {
		return nil, s.upstreamError(ctx, "website_item.get", "website items", err, slog.String("sku", sku))
	}
	view.ShortDescription = item.ShortDescription

	return &domain.ProductDetail{
		Product: domain.DetailedProduct{
			ProductView:     view,
			LongDescription: item.LongDescription,
			Features:        nonNil(features),
			ItemReviews:     nonNil(reviews),
		},
		RelatedProducts:     related,
		FeaturedProducts:    related,
		BestSellingProducts: related,
		LatestProducts:      related,
		TopRatedProducts:    related,
		Categories:          Breadcrumbs(hit),
	}, nil
}

// familyProducts returns the first catalogue page of a product family.
func (s *CatalogueService) familyProducts(ctx context.Context, familyCode string) ([]domain.ProductView, error) {
	if familyCode == "" {
		return []domain.ProductView{}, nil
	}

	plan, err := query.Build(domain.SearchFilter{FamilyCode: familyCode}, nil, s.opts)
	if err != nil {
		return nil, invalidInput(err)
	}
	req := engine.NewRequest(plan)
	req.StatsField = ""
	req.FacetFields = nil

	res, err := s.engine.Search(ctx, req)
	if err != nil {
		return nil, s.upstreamError(ctx, "product.related", "search index", err, slog.String("family_code", familyCode))
	}
	return s.mapper.Map(s.withIdentity(ctx, res.Hits)), nil
}

// Breadcrumbs builds the category trail from the group_N fields of a hit in
// ascending N. Each step links to the comma-joined slugs of the groups up to
// and including it.
func Breadcrumbs(hit domain.Record) []domain.Breadcrumb {
	type group struct {
		n     int
		label string
	}
	var groups []group
	for key := range hit {
		suffix, ok := strings.CutPrefix(key, groupFieldPrefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if label := strings.TrimSpace(hit.Text(key)); label != "" {
			groups = append(groups, group{n: n, label: label})
		}
	}
	slices.SortFunc(groups, func(a, b group) int { return a.n - b.n })

	crumbs := make([]domain.Breadcrumb, 0, len(groups))
	segments := make([]string, 0, len(groups))
	for _, g := range groups {
		segments = append(segments, slug.Segment(g.label))
		crumbs = append(crumbs, domain.Breadcrumb{Label: g.label, URL: strings.Join(segments, ",")})
	}
	return crumbs
}
