package domain

// ImageSet holds the size variants of a product's pictures.
type ImageSet struct {
	Thumbnail string   `json:"thumbnail"`
	Small     string   `json:"small"`
	Large     string   `json:"large"`
	Gallery   []string `json:"gallery"`
}

// ProductView is one catalogue product as rendered to the storefront.
//
// The cosmetic fields (sale_count through variants) always carry a value,
// defaulted by NewProductView. The mapped fields are omitted when the search
// hit did not have them.
type ProductView struct {
	ID               string   `json:"id,omitempty"`
	SKU              string   `json:"sku,omitempty"`
	Slug             string   `json:"slug,omitempty"`
	Name             string   `json:"name,omitempty"`
	ShortDescription string   `json:"short_description,omitempty"`
	FamilyCode       string   `json:"family_code,omitempty"`
	GrossPrice       *float64 `json:"gross_price,omitempty"`
	NetPrice         *float64 `json:"net_price,omitempty"`
	PromoPrice       *float64 `json:"promo_price,omitempty"`
	IsSale           *bool    `json:"is_sale,omitempty"`
	Stock            Value    `json:"stock,omitzero"`

	// Price is the price to display; SalePrice is set only while a
	// promotion with a positive price is active, and Price then holds the
	// undiscounted gross price.
	Price     *float64 `json:"price"`
	SalePrice *float64 `json:"sale_price"`

	*ImageSet

	SaleCount    int      `json:"sale_count"`
	Ratings      float64  `json:"ratings"`
	Reviews      string   `json:"reviews"`
	IsHot        bool     `json:"is_hot"`
	IsNew        bool     `json:"is_new"`
	IsOutOfStock *bool    `json:"is_out_of_stock"`
	ReleaseDate  *string  `json:"release_date"`
	Developer    *string  `json:"developer"`
	Publisher    *string  `json:"publisher"`
	GameMode     *string  `json:"game_mode"`
	Rated        *string  `json:"rated"`
	Until        *string  `json:"until"`
	Variants     []Record `json:"variants"`

	Categories []CategoryRef `json:"product_categories,omitzero"`
	Brands     []NamedRef    `json:"marche,omitzero"`
	Tags       []NamedRef    `json:"tags,omitzero"`
	Varianti   []Variant     `json:"varianti,omitzero"`
}

// NewProductView returns a view holding only the cosmetic defaults.
func NewProductView() ProductView {
	return ProductView{
		SaleCount: 0,
		Ratings:   0,
		Reviews:   "0",
		IsHot:     true,
		IsNew:     true,
		Variants:  []Record{},
	}
}

// CategoryRef is a category the product is filed under.
type CategoryRef struct {
	Nome   string  `json:"nome"`
	Slug   string  `json:"slug"`
	Parent *string `json:"parent"`
}

// NamedRef is a brand or tag reference.
type NamedRef struct {
	Nome string `json:"nome"`
	Slug string `json:"slug"`
}

// Variant is a purchasable variant with optional size and color options.
type Variant struct {
	ID             string   `json:"id"`
	Prezzo         *float64 `json:"prezzo"`
	PrezzoScontato *float64 `json:"prezzo_scontato"`
	Taglia         []Option `json:"taglia,omitzero"`
	Colori         []Option `json:"colori,omitzero"`
}

// Option is one size or color choice.
type Option struct {
	Nome   string `json:"nome"`
	Valore string `json:"valore"`
}

// DetailedProduct is a ProductView enriched for the product page.
type DetailedProduct struct {
	ProductView
	LongDescription string    `json:"long_description"`
	Features        []Feature `json:"features"`
	ItemReviews     []Review  `json:"item_reviews"`
}

// Breadcrumb is one step of the category trail on a product page.
type Breadcrumb struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ProductDetail is the product page payload. The related lists all carry the
// same family-scoped catalogue page.
type ProductDetail struct {
	Product             DetailedProduct `json:"product"`
	RelatedProducts     []ProductView   `json:"relatedProducts"`
	FeaturedProducts    []ProductView   `json:"featuredProducts"`
	BestSellingProducts []ProductView   `json:"bestSellingProducts"`
	LatestProducts      []ProductView   `json:"latestProducts"`
	TopRatedProducts    []ProductView   `json:"topRatedProducts"`
	Categories          []Breadcrumb    `json:"categories"`
}
