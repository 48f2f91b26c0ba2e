package domain

// Sort orders accepted by the catalogue.
const (
	SortRelevance = ""
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

// SearchFilter holds the catalogue request parameters. Numeric bounds stay
// raw strings so the query builder can reject malformed input with a typed
// error; a bound that is empty or parses to a value <= 0 is ignored.
type SearchFilter struct {
	Text           string
	Category       string
	Features       string
	Wishlist       bool
	CategoryDetail string
	SKUs           []string
	PromoCode      string
	FamilyCode     string

	MinPrice           string
	MaxPrice           string
	MinDiscountValue   string
	MaxDiscountValue   string
	MinDiscountPercent string
	MaxDiscountPercent string

	OrderBy string
	Page    int
	PerPage int
}

// FacetCount is the number of hits sharing one facet value.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FieldStats are index-computed statistics over the whole result set.
type FieldStats struct {
	Min *float64
	Max *float64
}

// FeatureFacet groups the feature facet values of one feature name.
type FeatureFacet struct {
	Name   string       `json:"name"`
	UOM    string       `json:"uom,omitempty"`
	Values []FacetCount `json:"values"`
}

// SearchResponse is the catalogue page envelope.
type SearchResponse struct {
	TotalCount         int            `json:"totalCount"`
	CurrentPage        int            `json:"current_page"`
	Pages              int            `json:"pages"`
	PerPage            int            `json:"per_page"`
	IsLast             bool           `json:"is_last"`
	Products           []ProductView  `json:"products"`
	SolrResult         []Record       `json:"solr_result"`
	Query              string         `json:"query"`
	MinPriceAll        *int           `json:"min_price_all"`
	MaxPriceAll        *int           `json:"max_price_all"`
	Category           []FacetCount   `json:"category"`
	Features           []FeatureFacet `json:"features"`
	MenuCategoryDetail *MenuDetail    `json:"menu_category_detail"`
}
