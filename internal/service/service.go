package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/omishoninjp-sys/daigo/internal/domain"
	"github.com/omishoninjp-sys/daigo/internal/pricing"
	"github.com/omishoninjp-sys/daigo/internal/scraper"
	"github.com/omishoninjp-sys/daigo/internal/shopify"
)

// ManualOrder is a hand-entered listing request, used when a site
// cannot be scraped at all. PriceJPY is the catalog (selling) price the
// operator already computed.
type ManualOrder struct {
	Title            string `json:"title"`
	PriceJPY         int    `json:"price_jpy"`
	OriginalPriceJPY int    `json:"original_price_jpy"`
	ImageURL         string `json:"image_url"`
	SourceURL        string `json:"source_url"`
}

// Daigo runs the full proxy-purchase pipeline: extract a product from a
// marketplace URL, price it, and optionally materialize it as a
// storefront listing.
type Daigo struct {
	extractor *scraper.Extractor
	engine    *pricing.Engine
	store     *shopify.Client
	logger    *zap.Logger
}

// New creates the pipeline service
func New(extractor *scraper.Extractor, engine *pricing.Engine, store *shopify.Client, logger *zap.Logger) *Daigo {
	return &Daigo{extractor: extractor, engine: engine, store: store, logger: logger}
}

// Engine exposes the pricing engine for the rate snapshot endpoint
func (d *Daigo) Engine() *pricing.Engine { return d.engine }

// StrategySummary reports the configured fetch chains per site
func (d *Daigo) StrategySummary() map[string][]string { return d.extractor.Routes() }

// Scrape extracts and prices the product behind a URL
func (d *Daigo) Scrape(ctx context.Context, rawURL string) (*domain.Product, *domain.Pricing, error) {
	product, err := d.extractor.Extract(ctx, strings.TrimSpace(rawURL))
	if err != nil {
		return nil, nil, err
	}

	quote := d.engine.Quote(ctx, product.PriceJPY)
	return product, &quote, nil
}

// CreateOrder runs extraction, pricing and listing creation in one
// shot. titleOverride, when non-empty, replaces the scraped title on
// the listing.
func (d *Daigo) CreateOrder(ctx context.Context, rawURL, titleOverride string) (*domain.Product, *domain.Listing, error) {
	product, quote, err := d.Scrape(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}

	if titleOverride = strings.TrimSpace(titleOverride); titleOverride != "" {
		product.Title = titleOverride
	}

	listing, err := d.store.CreateListing(ctx, product, quote)
	if err != nil {
		return product, nil, err
	}

	d.logger.Info("listing created",
		zap.Int64("product_id", listing.ProductID),
		zap.String("source_url", product.SourceURL),
		zap.Int("selling_price_jpy", quote.SellingPriceJPY),
	)
	return product, listing, nil
}

// CreateManual creates a listing from operator-entered data, bypassing
// extraction and pricing.
func (d *Daigo) CreateManual(ctx context.Context, order ManualOrder) (*domain.Listing, error) {
	if strings.TrimSpace(order.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrParseMissingField)
	}
	if order.PriceJPY <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrParseMalformed)
	}

	originJPY := order.OriginalPriceJPY
	if originJPY <= 0 {
		originJPY = order.PriceJPY
	}

	product := &domain.Product{
		Title:     strings.TrimSpace(order.Title),
		PriceJPY:  originJPY,
		ImageURL:  order.ImageURL,
		SourceURL: order.SourceURL,
		Currency:  "JPY",
	}
	quote := &domain.Pricing{
		OriginalPriceJPY: originJPY,
		SellingPriceJPY:  order.PriceJPY,
	}

	return d.store.CreateListing(ctx, product, quote)
}
