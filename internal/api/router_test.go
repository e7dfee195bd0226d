package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omishoninjp-sys/daigo/internal/config"
	"github.com/omishoninjp-sys/daigo/internal/domain"
	"github.com/omishoninjp-sys/daigo/internal/pricing"
	"github.com/omishoninjp-sys/daigo/internal/service"
)

const testAPIKey = "test-secret"

type stubService struct {
	engine  *pricing.Engine
	product *domain.Product
	quote   *domain.Pricing
	listing *domain.Listing
	err     error
}

func (s *stubService) Scrape(_ context.Context, url string) (*domain.Product, *domain.Pricing, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.product, s.quote, nil
}

func (s *stubService) CreateOrder(_ context.Context, url, _ string) (*domain.Product, *domain.Listing, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.product, s.listing, nil
}

func (s *stubService) CreateManual(_ context.Context, order service.ManualOrder) (*domain.Listing, error) {
	if order.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrParseMissingField)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.listing, nil
}

func (s *stubService) Engine() *pricing.Engine { return s.engine }

func (s *stubService) StrategySummary() map[string][]string {
	return map[string][]string{"amazon": {"direct"}}
}

func testEngine(t *testing.T) *pricing.Engine {
	t.Helper()
	schedule, err := pricing.NewSchedule([]config.Tier{
		{MinJPY: 0, MaxJPY: 3001, Markup: 1.40},
		{MinJPY: 3001, MaxJPY: 0, Markup: 1.30},
	})
	require.NoError(t, err)
	rates := pricing.NewRateProvider(config.PricingConfig{FixedTWDRate: 0.21}, zap.NewNop())
	return pricing.NewEngine(schedule, 300, rates)
}

func testApp(t *testing.T, svc *stubService) *fiber.App {
	t.Helper()
	if svc.engine == nil {
		svc.engine = testEngine(t)
	}

	app := fiber.New()
	cfg := &config.Config{Server: config.ServerConfig{APIKey: testAPIKey}}
	SetupRoutes(app, cfg, &Dependencies{Daigo: svc})
	return app
}

func jsonRequest(method, path, apiKey string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return out
}

func TestHealthIsOpen(t *testing.T) {
	app := testApp(t, &stubService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "scrapers")
}

func TestRateIsOpen(t *testing.T) {
	app := testApp(t, &stubService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/rate", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, 0.21, body["jpy_to_twd"])
	assert.Equal(t, false, body["rate_stale"])
	assert.NotEmpty(t, body["pricing_tiers"])
}

func TestScrapeRequiresAPIKey(t *testing.T) {
	app := testApp(t, &stubService{})

	for _, key := range []string{"", "wrong-key"} {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/scrape", key, map[string]string{"url": "https://example.jp/x"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "forbidden", body["code"])
	}
}

func TestScrapeSuccess(t *testing.T) {
	svc := &stubService{
		product: &domain.Product{
			SourceURL: "https://www.amazon.co.jp/dp/B0TEST",
			Title:     "テスト商品",
			PriceJPY:  12000,
			Currency:  "JPY",
			Site:      domain.SiteAmazon,
		},
		quote: &domain.Pricing{
			OriginalPriceJPY:  12000,
			MarkupRate:        1.30,
			ServiceFeeJPY:     3600,
			SellingPriceJPY:   15600,
			ReferencePriceTWD: 3276,
			TWDRate:           0.21,
		},
	}
	app := testApp(t, svc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/scrape", testAPIKey, map[string]string{"url": svc.product.SourceURL}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])

	product := body["product"].(map[string]any)
	assert.Equal(t, "テスト商品", product["title"])
	assert.Equal(t, float64(12000), product["price_jpy"])

	quote := body["pricing"].(map[string]any)
	assert.Equal(t, float64(15600), quote["selling_price_jpy"])
	assert.Equal(t, float64(3276), quote["reference_price_twd"])
}

func TestScrapeRequiresURL(t *testing.T) {
	app := testApp(t, &stubService{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/scrape", testAPIKey, map[string]string{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "invalid_request", body["code"])
}

func TestScrapeErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid url",
			err:        fmt.Errorf("%w: %q", domain.ErrInvalidURL, "ftp://x"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_url",
		},
		{
			name:       "missing field",
			err:        fmt.Errorf("%w: no price", domain.ErrParseMissingField),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "parse_missing_field",
		},
		{
			name:       "malformed price",
			err:        fmt.Errorf("%w: not numeric", domain.ErrParseMalformed),
			wantStatus: http.StatusBadRequest,
			wantCode:   "parse_malformed",
		},
		{
			name:       "all strategies failed",
			err:        fmt.Errorf("%w: %w", domain.ErrExtractionExhausted, domain.ErrFetchNetwork),
			wantStatus: http.StatusBadGateway,
			wantCode:   "fetch_network",
		},
		{
			name:       "all strategies timed out",
			err:        fmt.Errorf("%w: %w", domain.ErrExtractionExhausted, domain.ErrFetchTimeout),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "fetch_timeout",
		},
		{
			name:       "storefront rejected listing",
			err:        fmt.Errorf("%w: storefront returned 422", domain.ErrListingFailed),
			wantStatus: http.StatusBadGateway,
			wantCode:   "listing_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testApp(t, &stubService{err: tt.err})

			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/scrape", testAPIKey, map[string]string{"url": "https://example.jp/x"}))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decodeBody(t, resp)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}

func TestCreateOrder(t *testing.T) {
	svc := &stubService{
		product: &domain.Product{Title: "テスト商品", PriceJPY: 12000},
		listing: &domain.Listing{
			ProductID:   987654321,
			Handle:      "test-item",
			CheckoutURL: "https://shop.example.tw/products/test-item",
			AdminURL:    "https://teststore.myshopify.com/admin/products/987654321",
		},
	}
	app := testApp(t, svc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/create-order", testAPIKey,
		map[string]string{"url": "https://www.amazon.co.jp/dp/B0TEST", "title_override": "別名"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(987654321), body["product_id"])
	assert.Equal(t, "https://shop.example.tw/products/test-item", body["checkout_url"])
	assert.Equal(t, "https://teststore.myshopify.com/admin/products/987654321", body["admin_url"])
}

func TestCreateManualValidation(t *testing.T) {
	app := testApp(t, &stubService{listing: &domain.Listing{ProductID: 1}})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/create-manual", testAPIKey,
		map[string]any{"price_jpy": 5000}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "parse_missing_field", body["code"])
}

func TestCreateManualSuccess(t *testing.T) {
	app := testApp(t, &stubService{listing: &domain.Listing{
		ProductID:   7,
		CheckoutURL: "https://shop.example.tw/products/manual-item",
	}})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/create-manual", testAPIKey,
		map[string]any{"title": "手動登録商品", "price_jpy": 5000}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(7), body["product_id"])
}
