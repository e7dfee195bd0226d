package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omishoninjp-sys/daigo/internal/config"
	"github.com/omishoninjp-sys/daigo/internal/domain"
	"github.com/omishoninjp-sys/daigo/internal/parser"
	"github.com/omishoninjp-sys/daigo/internal/pricing"
	"github.com/omishoninjp-sys/daigo/internal/scraper"
	"github.com/omishoninjp-sys/daigo/internal/shopify"
)

type fixedFetcher struct{ html string }

func (f fixedFetcher) Name() string { return "direct" }

func (f fixedFetcher) Fetch(context.Context, string) (string, error) { return f.html, nil }

func pipelineEngine(t *testing.T) *pricing.Engine {
	t.Helper()
	schedule, err := pricing.NewSchedule([]config.Tier{
		{MinJPY: 0, MaxJPY: 3001, Markup: 1.40},
		{MinJPY: 3001, MaxJPY: 8001, Markup: 1.35},
		{MinJPY: 8001, MaxJPY: 20001, Markup: 1.30},
		{MinJPY: 20001, MaxJPY: 50001, Markup: 1.25},
		{MinJPY: 50001, MaxJPY: 0, Markup: 1.20},
	})
	require.NoError(t, err)
	rates := pricing.NewRateProvider(config.PricingConfig{FixedTWDRate: 0.21}, zap.NewNop())
	return pricing.NewEngine(schedule, 300, rates)
}

func storefrontServer(t *testing.T) (*httptest.Server, *shopify.Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products.json" {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"product":{"id":555,"handle":"listed-item"}}`))
	}))
	t.Cleanup(srv.Close)

	client := shopify.NewClient(config.ShopifyConfig{
		Store:       "teststore.myshopify.com",
		StoreDomain: "shop.example.tw",
		APIVersion:  "2024-10",
	}, zap.NewNop()).WithBaseURL(srv.URL)
	return srv, client
}

func pipelineService(t *testing.T, html string) *Daigo {
	t.Helper()

	routes := map[domain.Site]scraper.Route{
		domain.SiteGeneric: {
			Chain:  []scraper.Fetcher{fixedFetcher{html: html}},
			Parser: parser.NewGenericParser(),
		},
	}
	extractor := scraper.NewExtractor(routes, nil, zap.NewNop())

	_, store := storefrontServer(t)
	return New(extractor, pipelineEngine(t), store, zap.NewNop())
}

const productPage = `<html><head>
	<title>信楽焼 花瓶</title>
	<meta property="og:image" content="https://shop.example.jp/vase.jpg">
</head><body><div class="price">¥12,000（税込）</div></body></html>`

func TestScrapePipeline(t *testing.T) {
	svc := pipelineService(t, productPage)

	product, quote, err := svc.Scrape(context.Background(), "  https://shop.example.jp/items/vase \n")
	require.NoError(t, err)

	assert.Equal(t, "信楽焼 花瓶", product.Title)
	assert.Equal(t, 12000, product.PriceJPY)

	assert.Equal(t, 1.30, quote.MarkupRate)
	assert.Equal(t, 15600, quote.SellingPriceJPY)
	assert.Equal(t, 3600, quote.ServiceFeeJPY)
	assert.Equal(t, 3276, quote.ReferencePriceTWD)
	assert.False(t, quote.RateStale)
}

func TestCreateOrderAppliesTitleOverride(t *testing.T) {
	svc := pipelineService(t, productPage)

	product, listing, err := svc.CreateOrder(context.Background(), "https://shop.example.jp/items/vase", "【代購】信楽焼 花瓶")
	require.NoError(t, err)

	assert.Equal(t, "【代購】信楽焼 花瓶", product.Title)
	assert.Equal(t, int64(555), listing.ProductID)
	assert.Equal(t, "https://shop.example.tw/products/listed-item", listing.CheckoutURL)
}

func TestCreateManual(t *testing.T) {
	var got struct {
		Product struct {
			Title    string `json:"title"`
			Variants []struct {
				Price string `json:"price"`
			} `json:"variants"`
		} `json:"product"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"product":{"id":7,"handle":"manual-item"}}`))
	}))
	defer srv.Close()

	store := shopify.NewClient(config.ShopifyConfig{
		Store:       "teststore.myshopify.com",
		StoreDomain: "shop.example.tw",
	}, zap.NewNop()).WithBaseURL(srv.URL)

	svc := New(nil, pipelineEngine(t), store, zap.NewNop())

	listing, err := svc.CreateManual(context.Background(), ManualOrder{
		Title:     "手動登録の限定品",
		PriceJPY:  9800,
		SourceURL: "https://shop.example.jp/items/limited",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), listing.ProductID)
	assert.Equal(t, "手動登録の限定品", got.Product.Title)
	require.Len(t, got.Product.Variants, 1)
	assert.Equal(t, "9800", got.Product.Variants[0].Price)
}

func TestCreateManualValidation(t *testing.T) {
	svc := New(nil, pipelineEngine(t), nil, zap.NewNop())

	_, err := svc.CreateManual(context.Background(), ManualOrder{PriceJPY: 9800})
	assert.ErrorIs(t, err, domain.ErrParseMissingField)

	_, err = svc.CreateManual(context.Background(), ManualOrder{Title: "商品", PriceJPY: 0})
	assert.ErrorIs(t, err, domain.ErrParseMalformed)
}
