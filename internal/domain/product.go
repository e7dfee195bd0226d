package domain

import "strings"

// Site identifies which marketplace a product URL belongs to
type Site string

const (
	SiteAmazon  Site = "amazon"
	SiteRakuten Site = "rakuten"
	SiteZozo    Site = "zozotown"
	SiteGeneric Site = "generic"
	SiteInvalid Site = "invalid"
)

// TitlePlaceholder is used when a page yields a price but no usable title
const TitlePlaceholder = "（商品名未取得）"

// Product is the normalized record extracted from a marketplace page
type Product struct {
	SourceURL   string   `json:"source_url"`
	Title       string   `json:"title"`
	PriceJPY    int      `json:"price_jpy"`
	ImageURL    string   `json:"image_url,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Description string   `json:"description,omitempty"`
	Currency    string   `json:"currency"`
	ExtraImages []string `json:"extra_images,omitempty"`
	Site        Site     `json:"site"`
}

// Valid reports whether the record is complete enough to price and list.
// A non-positive price means extraction failed, whatever else was found.
func (p *Product) Valid() bool {
	return p != nil && strings.TrimSpace(p.Title) != "" && p.PriceJPY > 0
}

// Pricing is the computed resale quote for a product
type Pricing struct {
	OriginalPriceJPY  int     `json:"original_price_jpy"`
	MarkupRate        float64 `json:"markup_rate"`
	ServiceFeeJPY     int     `json:"service_fee_jpy"`
	SellingPriceJPY   int     `json:"selling_price_jpy"`
	ReferencePriceTWD int     `json:"reference_price_twd"`
	TWDRate           float64 `json:"twd_rate"`
	RateStale         bool    `json:"rate_stale,omitempty"`
}

// Listing is the result of materializing a product in the storefront
type Listing struct {
	ProductID   int64  `json:"product_id"`
	Handle      string `json:"handle"`
	CheckoutURL string `json:"checkout_url"`
	AdminURL    string `json:"admin_url"`
}
