package query

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/loziogigio/omnicommerce/internal/domain"
)

// Index field names.
const (
	TextField            = "text"
	SKUField             = "sku"
	SlugField            = "slug"
	PriceField           = "net_price_with_vat"
	DiscountValueField   = "discount_value"
	DiscountPercentField = "discount_percent"
	PromoCodeField       = "promo_code"
	FamilyCodeField      = "family_code"
)

// MaxResultWindow bounds start+rows of any page. It matches the default
// index.max_result_window of Elasticsearch.
const MaxResultWindow = 10000

// Gateway parameters forwarded verbatim to the index.
const (
	ParamGroups   = "groups"
	ParamFeatures = "features"
)

// WishlistPolicy decides what a wishlist search does when the caller has no
// saved items.
type WishlistPolicy string

const (
	// WishlistUnfiltered drops the wishlist restriction.
	WishlistUnfiltered WishlistPolicy = "unfiltered"
	// WishlistNoResults yields an empty page.
	WishlistNoResults WishlistPolicy = "no_results"
)

// Options tune Build.
type Options struct {
	DefaultPerPage int
	MaxPerPage     int
	EmptyWishlist  WishlistPolicy
}

// DefaultOptions mirrors the storefront defaults.
func DefaultOptions() Options {
	return Options{DefaultPerPage: 12, MaxPerPage: 100, EmptyWishlist: WishlistUnfiltered}
}

// ParseError reports a request parameter that could not be used.
type ParseError struct {
	Param string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Param, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	errNotNumber = errors.New("not a number")
	errNegative  = errors.New("must not be negative")
	errTooDeep   = fmt.Errorf("page ends beyond result %d", MaxResultWindow)
)

// Build turns a filter into a query plan. wishlist holds the caller's saved
// item codes and is only consulted when f.Wishlist is set.
//
// Clauses are emitted in a fixed order: text, wishlist, SKU list, price,
// discount value, discount percent, promo code, family code.
func Build(f domain.SearchFilter, wishlist []string, opts Options) (*Plan, error) {
	opts = withDefaults(opts)

	page, err := paginate(f.Page, f.PerPage, opts)
	if err != nil {
		return nil, err
	}

	q := Query{Clauses: []Clause{Text{Term: strings.TrimSpace(f.Text)}}}

	if f.Wishlist {
		codes := nonEmpty(wishlist)
		switch {
		case len(codes) > 0:
			q.Clauses = append(q.Clauses, AnyOf{Field: SKUField, Values: codes})
		case opts.EmptyWishlist == WishlistNoResults:
			q.MatchNone = true
		}
	}

	if skus := nonEmpty(f.SKUs); len(skus) > 0 {
		quoted := make([]string, len(skus))
		for i, s := range skus {
			quoted[i] = PathQuote(s)
		}
		q.Clauses = append(q.Clauses, AnyOf{Field: SKUField, Values: quoted})
	}

	ranges := []struct {
		field   string
		minName string
		minRaw  string
		maxName string
		maxRaw  string
	}{
		{PriceField, "min_price", f.MinPrice, "max_price", f.MaxPrice},
		{DiscountValueField, "min_discount_value", f.MinDiscountValue, "max_discount_value", f.MaxDiscountValue},
		{DiscountPercentField, "min_discount_percent", f.MinDiscountPercent, "max_discount_percent", f.MaxDiscountPercent},
	}
	for _, r := range ranges {
		lower, err := parseBound(r.minName, r.minRaw)
		if err != nil {
			return nil, err
		}
		upper, err := parseBound(r.maxName, r.maxRaw)
		if err != nil {
			return nil, err
		}
		if lower != nil || upper != nil {
			q.Clauses = append(q.Clauses, Range{Field: r.field, Lower: lower, Upper: upper})
		}
	}

	if code := strings.TrimSpace(f.PromoCode); code != "" {
		q.Clauses = append(q.Clauses, Term{Field: PromoCodeField, Value: code})
	}
	if code := strings.TrimSpace(f.FamilyCode); code != "" {
		q.Clauses = append(q.Clauses, Term{Field: FamilyCodeField, Value: code})
	}

	plan := &Plan{Query: q, Page: page}

	switch f.OrderBy {
	case domain.SortPriceAsc:
		plan.Sort = &Sort{Field: PriceField}
	case domain.SortPriceDesc:
		plan.Sort = &Sort{Field: PriceField, Desc: true}
	}

	if f.Category != "" || f.Features != "" {
		plan.Params = make(map[string]string, 2)
		if f.Category != "" {
			plan.Params[ParamGroups] = f.Category
		}
		if f.Features != "" {
			plan.Params[ParamFeatures] = f.Features
		}
	}

	return plan, nil
}

// BySlug plans the single-document lookup of a product page.
func BySlug(slug string) *Plan {
	return &Plan{
		Query: Query{Clauses: []Clause{Term{Field: SlugField, Value: slug}}},
		Page:  Page{Number: 1, Start: 0, PerPage: 1},
	}
}

func withDefaults(opts Options) Options {
	d := DefaultOptions()
	if opts.DefaultPerPage <= 0 {
		opts.DefaultPerPage = d.DefaultPerPage
	}
	if opts.MaxPerPage <= 0 {
		opts.MaxPerPage = d.MaxPerPage
	}
	if opts.EmptyWishlist == "" {
		opts.EmptyWishlist = d.EmptyWishlist
	}
	return opts
}

// paginate applies the page rules: per_page 0 means the default, values
// above the maximum are clamped, pages below 1 are page 1. A page ending past
// MaxResultWindow is rejected.
func paginate(page, perPage int, opts Options) (Page, error) {
	if perPage < 0 {
		return Page{}, &ParseError{Param: "per_page", Value: strconv.Itoa(perPage), Err: errNegative}
	}
	if perPage == 0 {
		perPage = opts.DefaultPerPage
	}
	if perPage > opts.MaxPerPage {
		perPage = opts.MaxPerPage
	}
	if page < 1 {
		page = 1
	}
	if page-1 > (MaxResultWindow-perPage)/perPage {
		return Page{}, &ParseError{Param: "page", Value: strconv.Itoa(page), Err: errTooDeep}
	}
	return Page{Number: page, Start: (page - 1) * perPage, PerPage: perPage}, nil
}

// parseBound returns nil for an absent bound or one that is <= 0.
func parseBound(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &ParseError{Param: name, Value: raw, Err: errNotNumber}
	}
	if v <= 0 {
		return nil, nil
	}
	return &v, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// PathQuote percent-encodes everything except RFC 3986 unreserved characters
// and '/'. Unlike url.PathEscape, sub-delimiters are escaped and '/' is kept.
func PathQuote(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' ||
			c == '-' || c == '.' || c == '_' || c == '~' || c == '/' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}
