// Package mapper converts raw search hits into storefront product views.
package mapper

import (
	"github.com/loziogigio/omnicommerce/internal/domain"
)

// Raw hit fields read outside the rename table.
const (
	fieldImages      = "images"
	fieldGrossPrice  = "gross_price_with_vat"
	fieldNetPrice    = "net_price_with_vat"
	fieldPromoPrice  = "promo_price_with_vat"
	fieldCategories  = "id_group"
	fieldBrands      = "product_brands"
	fieldTags        = "product_tags"
	fieldVariants    = "variants"
	fieldIdentityID  = "id"
	fieldIdentitySKU = "sku"
)

// ImageResolver expands the image paths of a hit into size variants.
type ImageResolver interface {
	Resolve(paths []string) *domain.ImageSet
}

// fieldRule copies one raw field into the view.
type fieldRule struct {
	source string
	target string
	assign func(v *domain.ProductView, val domain.Value)
}

// renameTable lists every raw field copied onto the view, in order. Fields
// missing from a hit are skipped and the view keeps its default.
var renameTable = []fieldRule{
	{"id", "id", func(v *domain.ProductView, val domain.Value) { v.ID = val.Text() }},
	{"sku", "sku", func(v *domain.ProductView, val domain.Value) { v.SKU = val.Text() }},
	{"name", "name", func(v *domain.ProductView, val domain.Value) { v.Name = val.Text() }},
	{fieldGrossPrice, "gross_price", func(v *domain.ProductView, val domain.Value) { v.GrossPrice = number(val) }},
	{fieldNetPrice, "net_price", func(v *domain.ProductView, val domain.Value) { v.NetPrice = number(val) }},
	{fieldPromoPrice, "promo_price", func(v *domain.ProductView, val domain.Value) { v.PromoPrice = number(val) }},
	{"name_web", "short_description", func(v *domain.ProductView, val domain.Value) { v.ShortDescription = val.Text() }},
	{"is_promo", "is_sale", func(v *domain.ProductView, val domain.Value) { v.IsSale = flag(val) }},
	{"availability", "stock", func(v *domain.ProductView, val domain.Value) { v.Stock = val }},
	{"slug", "slug", func(v *domain.ProductView, val domain.Value) { v.Slug = val.Text() }},
	{"family_code", "family_code", func(v *domain.ProductView, val domain.Value) { v.FamilyCode = val.Text() }},
}

// Mapper maps hits to views. It holds no per-call state.
type Mapper struct {
	images ImageResolver
}

// New creates a Mapper. A nil resolver leaves images unset.
func New(images ImageResolver) *Mapper {
	return &Mapper{images: images}
}

// Map converts hits in order.
func (m *Mapper) Map(hits []domain.Record) []domain.ProductView {
	out := make([]domain.ProductView, len(hits))
	for i, h := range hits {
		out[i] = m.MapHit(h)
	}
	return out
}

// MapHit converts one hit.
func (m *Mapper) MapHit(hit domain.Record) domain.ProductView {
	v := domain.NewProductView()

	for _, rule := range renameTable {
		if val, ok := hit[rule.source]; ok {
			rule.assign(&v, val)
		}
	}

	if hit.Has(fieldImages) && m.images != nil {
		v.ImageSet = m.images.Resolve(imagePaths(hit.Get(fieldImages)))
	}

	applyPromotion(&v, hit)

	if val, ok := hit[fieldCategories]; ok {
		v.Categories = categories(val)
	}
	if val, ok := hit[fieldBrands]; ok {
		v.Brands = namedRefs(val)
	}
	if val, ok := hit[fieldTags]; ok {
		v.Tags = namedRefs(val)
	}
	if val, ok := hit[fieldVariants]; ok {
		v.Varianti = variants(val)
	}

	return v
}

// HasIdentity reports whether hit carries both an id and a sku.
func HasIdentity(hit domain.Record) bool {
	return hit.Text(fieldIdentityID) != "" && hit.Text(fieldIdentitySKU) != ""
}

// applyPromotion sets price and sale_price from the raw VAT-inclusive
// prices: an active promotion with a positive promo price shows the gross
// price struck through, otherwise the net price is shown alone.
func applyPromotion(v *domain.ProductView, hit domain.Record) {
	if v.IsSale != nil && *v.IsSale && v.PromoPrice != nil && *v.PromoPrice > 0 {
		v.Price = number(hit.Get(fieldGrossPrice))
		v.SalePrice = number(hit.Get(fieldPromoPrice))
		return
	}
	v.SalePrice = nil
	v.Price = number(hit.Get(fieldNetPrice))
}

func number(val domain.Value) *float64 {
	n, ok := val.AsNumber()
	if !ok {
		return nil
	}
	return &n
}

func flag(val domain.Value) *bool {
	b := val.Truthy()
	return &b
}

func imagePaths(val domain.Value) []string {
	if list, ok := val.AsStrings(); ok {
		return list
	}
	if s, ok := val.AsString(); ok {
		return []string{s}
	}
	return nil
}
