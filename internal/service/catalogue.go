package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/internal/engine"
	"github.com/loziogigio/omnicommerce/internal/mapper"
	"github.com/loziogigio/omnicommerce/internal/query"
	"github.com/loziogigio/omnicommerce/internal/repository"
	apperrors "github.com/loziogigio/omnicommerce/pkg/errors"
	"github.com/loziogigio/omnicommerce/pkg/logger"
)

var droppedHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "catalogue_hits_dropped_total",
	Help: "Search hits excluded from a response for lacking an id or sku",
})

// Collaborators groups the stores the catalogue reads besides the index.
type Collaborators struct {
	Wishlists    repository.WishlistRepository
	Features     repository.FeatureRepository
	Reviews      repository.ReviewRepository
	Menus        repository.MenuRepository
	WebsiteItems repository.WebsiteItemRepository
}

// CatalogueService runs catalogue searches and product page lookups.
type CatalogueService struct {
	engine engine.Engine
	mapper *mapper.Mapper
	repos  Collaborators
	opts   query.Options
	logger *slog.Logger
}

// NewCatalogueService creates a new catalogue service.
func NewCatalogueService(eng engine.Engine, m *mapper.Mapper, repos Collaborators, opts query.Options, logger *slog.Logger) *CatalogueService {
	return &CatalogueService{
		engine: eng,
		mapper: m,
		repos:  repos,
		opts:   opts,
		logger: logger,
	}
}

// Search runs one catalogue request. userID is empty for guests.
func (s *CatalogueService) Search(ctx context.Context, f domain.SearchFilter, userID string) (*domain.SearchResponse, error) {
	var wishlist []string
	if f.Wishlist {
		if userID == "" {
			return nil, apperrors.Unauthorized("sign in to filter by wishlist")
		}
		items, err := s.repos.Wishlists.ItemsFor(ctx, userID)
		if err != nil {
			return nil, s.upstreamError(ctx, "wishlist.items", "wishlist", err, slog.String("user_id", userID))
		}
		wishlist = items
	}

	plan, err := query.Build(f, wishlist, s.opts)
	if err != nil {
		return nil, invalidInput(err)
	}

	resp := &domain.SearchResponse{
		CurrentPage: plan.Page.Number,
		PerPage:     plan.Page.PerPage,
		Products:    []domain.ProductView{},
		SolrResult:  []domain.Record{},
		Query:       plan.Query.String(),
		Category:    []domain.FacetCount{},
		Features:    []domain.FeatureFacet{},
	}

	if !plan.Query.MatchNone {
		res, err := s.engine.Search(ctx, engine.NewRequest(plan))
		if err != nil {
			return nil, s.upstreamError(ctx, "catalogue.search", "search index", err, slog.String("query", resp.Query))
		}

		resp.TotalCount = res.Total
		resp.SolrResult = nonNil(res.Hits)
		resp.Products = s.mapper.Map(s.withIdentity(ctx, res.Hits))
		if st, ok := res.Stats[query.PriceField]; ok {
			resp.MinPriceAll = truncate(st.Min)
			resp.MaxPriceAll = truncate(st.Max)
		}
		if cats := res.Facets[engine.FacetCategory]; cats != nil {
			resp.Category = cats
		}
		if feats := res.Facets[engine.FacetFeatures]; len(feats) > 0 {
			units, err := s.repos.Features.UnitsByFamilyCodes(ctx, familyCodes(resp.Products))
			if err != nil {
				return nil, s.upstreamError(ctx, "features.units", "feature metadata", err)
			}
			resp.Features = mergeFeatureFacets(feats, units)
		}
	}

	resp.Pages = pageCount(resp.TotalCount, plan.Page.PerPage)
	resp.IsLast = plan.Page.Start+plan.Page.PerPage >= resp.TotalCount

	if label := strings.TrimSpace(f.CategoryDetail); label != "" {
		detail, err := s.repos.Menus.DetailFor(ctx, label)
		switch {
		case err == nil:
			resp.MenuCategoryDetail = detail
		case errors.Is(err, apperrors.ErrNotFound):
		default:
			return nil, s.upstreamError(ctx, "menu.detail", "menu", err, slog.String("label", label))
		}
	}

	return resp, nil
}

// withIdentity drops hits without an id or sku.
func (s *CatalogueService) withIdentity(ctx context.Context, hits []domain.Record) []domain.Record {
	kept := make([]domain.Record, 0, len(hits))
	for i, h := range hits {
		if !mapper.HasIdentity(h) {
			droppedHits.Inc()
			s.logger.WarnContext(ctx, "dropping search hit without identity",
				slog.Int("position", i),
				slog.String("id", h.Text("id")),
				slog.String("sku", h.Text("sku")),
			)
			continue
		}
		kept = append(kept, h)
	}
	return kept
}

// upstreamError logs a failed collaborator call and classifies it. Errors
// that already carry a status are returned as they are.
func (s *CatalogueService) upstreamError(ctx context.Context, op, upstream string, err error, attrs ...slog.Attr) error {
	attrs = append([]slog.Attr{slog.String("operation", op), logger.Err(err)}, attrs...)
	s.logger.LogAttrs(ctx, slog.LevelError, "upstream call failed", attrs...)

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Unavailable(upstream, err)
}

func invalidInput(err error) error {
	var pe *query.ParseError
	if errors.As(err, &pe) {
		return apperrors.InvalidInput(pe.Error())
	}
	return apperrors.InvalidInput(err.Error())
}

func pageCount(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// truncate converts an index statistic to the integer shown on price sliders.
func truncate(v *float64) *int {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	n := int(math.Trunc(*v))
	return &n
}

// familyCodes lists the distinct family codes of products in order.
func familyCodes(products []domain.ProductView) []string {
	seen := make(map[string]struct{}, len(products))
	codes := make([]string, 0, len(products))
	for _, p := range products {
		if p.FamilyCode == "" {
			continue
		}
		if _, ok := seen[p.FamilyCode]; ok {
			continue
		}
		seen[p.FamilyCode] = struct{}{}
		codes = append(codes, p.FamilyCode)
	}
	return codes
}

// mergeFeatureFacets groups "name:value" facet entries by feature name, in
// order of first appearance, and attaches the unit of measure of each name.
// Entries without a separator form a group with a single empty value.
func mergeFeatureFacets(facets []domain.FacetCount, units map[string]string) []domain.FeatureFacet {
	out := make([]domain.FeatureFacet, 0)
	index := make(map[string]int)
	for _, fc := range facets {
		name, value, _ := strings.Cut(fc.Value, ":")
		name = strings.TrimSpace(name)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, domain.FeatureFacet{Name: name, UOM: units[name], Values: []domain.FacetCount{}})
		}
		out[i].Values = append(out[i].Values, domain.FacetCount{Value: strings.TrimSpace(value), Count: fc.Count})
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
