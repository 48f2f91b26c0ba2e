package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/loziogigio/omnicommerce/internal/domain"
	"github.com/loziogigio/omnicommerce/internal/service"
	"github.com/loziogigio/omnicommerce/pkg/httputil"
	"github.com/loziogigio/omnicommerce/pkg/middleware"
	"github.com/loziogigio/omnicommerce/pkg/validator"
)

// CatalogueHandler handles HTTP requests for catalogue and product pages.
type CatalogueHandler struct {
	service *service.CatalogueService
	logger  *slog.Logger
}

// NewCatalogueHandler creates a new catalogue HTTP handler.
func NewCatalogueHandler(svc *service.CatalogueService, logger *slog.Logger) *CatalogueHandler {
	return &CatalogueHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CatalogueRequest holds the query parameters of GET /catalogue. Numeric
// bounds stay strings; the query builder rejects malformed ones.
type CatalogueRequest struct {
	SearchTerm         string `query:"search_term" validate:"max=200"`
	Category           string `query:"category" validate:"max=500"`
	Features           string `query:"features" validate:"max=1000"`
	Wishlist           bool   `query:"wishlist"`
	CategoryDetail     string `query:"category_detail" validate:"max=200"`
	SKU                string `query:"sku" validate:"max=4000"`
	PromoCode          string `query:"promo_code" validate:"max=100"`
	MinPrice           string `query:"min_price" validate:"max=32"`
	MaxPrice           string `query:"max_price" validate:"max=32"`
	MinDiscountValue   string `query:"min_discount_value" validate:"max=32"`
	MaxDiscountValue   string `query:"max_discount_value" validate:"max=32"`
	MinDiscountPercent string `query:"min_discount_percent" validate:"max=32"`
	MaxDiscountPercent string `query:"max_discount_percent" validate:"max=32"`
	OrderBy            string `query:"order_by" validate:"max=32"`
	Page               int    `query:"page"`
	PerPage            int    `query:"per_page"`
}

// Filter converts the request into a search filter.
func (req CatalogueRequest) Filter() domain.SearchFilter {
	var skus []string
	if req.SKU != "" {
		skus = strings.Split(req.SKU, ";")
	}
	return domain.SearchFilter{
		Text:               req.SearchTerm,
		Category:           req.Category,
		Features:           req.Features,
		Wishlist:           req.Wishlist,
		CategoryDetail:     req.CategoryDetail,
		SKUs:               skus,
		PromoCode:          req.PromoCode,
		MinPrice:           req.MinPrice,
		MaxPrice:           req.MaxPrice,
		MinDiscountValue:   req.MinDiscountValue,
		MaxDiscountValue:   req.MaxDiscountValue,
		MinDiscountPercent: req.MinDiscountPercent,
		MaxDiscountPercent: req.MaxDiscountPercent,
		OrderBy:            req.OrderBy,
		Page:               req.Page,
		PerPage:            req.PerPage,
	}
}

// ProductRequest holds the query parameters of GET /products.
type ProductRequest struct {
	Slug string `query:"slug" validate:"required,max=200"`
}

// --- Handlers ---

// Catalogue handles GET /catalogue and GET /shop.
func (h *CatalogueHandler) Catalogue(w http.ResponseWriter, r *http.Request) {
	req, err := parseCatalogueRequest(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	resp, err := h.service.Search(r.Context(), req.Filter(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, resp)
}

// Product handles GET /products?slug=<slug>.
func (h *CatalogueHandler) Product(w http.ResponseWriter, r *http.Request) {
	req := ProductRequest{Slug: strings.TrimSpace(httputil.Query(r).Get("slug"))}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	detail, err := h.service.ProductBySlug(r.Context(), req.Slug)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, detail)
}

func parseCatalogueRequest(r *http.Request) (CatalogueRequest, error) {
	q := httputil.Query(r)
	req := CatalogueRequest{
		SearchTerm:         q.Get("search_term"),
		Category:           q.Get("category"),
		Features:           q.Get("features"),
		Wishlist:           httputil.ParseBool(q, "wishlist"),
		CategoryDetail:     q.Get("category_detail"),
		SKU:                strings.TrimSpace(q.Get("sku")),
		PromoCode:          q.Get("promo_code"),
		MinPrice:           q.Get("min_price"),
		MaxPrice:           q.Get("max_price"),
		MinDiscountValue:   q.Get("min_discount_value"),
		MaxDiscountValue:   q.Get("max_discount_value"),
		MinDiscountPercent: q.Get("min_discount_percent"),
		MaxDiscountPercent: q.Get("max_discount_percent"),
		OrderBy:            q.Get("order_by"),
	}

	var err error
	if req.Page, err = httputil.ParseInt(q, "page", 1); err != nil {
		return req, err
	}
	if req.PerPage, err = httputil.ParseInt(q, "per_page", 0); err != nil {
		return req, err
	}
	return req, nil
}
