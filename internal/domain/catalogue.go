package domain

import "time"

// Feature is a technical attribute of an item, such as "Diametro: 20 mm".
type Feature struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	UOM   string `json:"uom,omitempty"`
}

// Review is a customer review of an item.
type Review struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// MenuDetail is the storefront menu entry of a category. Image paths are
// absolute URLs on the website domain.
type MenuDetail struct {
	Name                string  `json:"name"`
	Label               string  `json:"label"`
	URL                 string  `json:"url"`
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	CategoryMenuImage   *string `json:"category_menu_image"`
	CategoryBannerImage *string `json:"category_banner_image"`
}

// WebsiteItem carries the long-form copy of a published item.
type WebsiteItem struct {
	Name             string
	ItemCode         string
	LongDescription  string
	ShortDescription string
}

// TopItem is the quantity sold of one item over a window.
type TopItem struct {
	ItemCode string  `json:"item_code"`
	TotalQty float64 `json:"total_qty"`
}
