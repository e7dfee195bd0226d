package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/omishoninjp-sys/daigo/internal/config"
	"github.com/omishoninjp-sys/daigo/internal/domain"
)

// maxListingImages caps how many gallery images ride along with a
// listing; Shopify allows far more but proxy listings don't need them.
const maxListingImages = 10

// Client talks to the Shopify Admin REST API to materialize extracted
// products as purchasable listings. The API is an untrusted network
// dependency: any non-2xx response surfaces verbatim as ErrListingFailed
// and is never retried here, because a blind retry can duplicate
// listings.
type Client struct {
	baseURL      string
	token        string
	store        string
	storeDomain  string
	collectionID string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewClient creates a Shopify Admin API client
func NewClient(cfg config.ShopifyConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:      cfg.BaseURL(),
		token:        cfg.AccessToken,
		store:        cfg.Store,
		storeDomain:  cfg.StoreDomain,
		collectionID: cfg.CollectionID,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

// WithHTTPClient replaces the underlying HTTP client, for tests
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithBaseURL replaces the API root, for tests
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

type productPayload struct {
	Product struct {
		Title      string           `json:"title"`
		BodyHTML   string           `json:"body_html"`
		Vendor     string           `json:"vendor"`
		Type       string           `json:"product_type"`
		Tags       []string         `json:"tags"`
		Status     string           `json:"status"`
		Variants   []variantPayload `json:"variants"`
		Metafields []metafield      `json:"metafields"`
		Images     []imagePayload   `json:"images,omitempty"`
	} `json:"product"`
}

type variantPayload struct {
	Price            string  `json:"price"`
	InventoryMgmt    *string `json:"inventory_management"`
	InventoryPolicy  string  `json:"inventory_policy"`
	RequiresShipping bool    `json:"requires_shipping"`
}

type metafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

type imagePayload struct {
	Src      string `json:"src"`
	Position int    `json:"position"`
}

type productResponse struct {
	Product struct {
		ID     int64  `json:"id"`
		Handle string `json:"handle"`
	} `json:"product"`
}

// CreateListing creates a proxy-purchase listing for an extracted
// product priced at its computed selling price.
func (c *Client) CreateListing(ctx context.Context, product *domain.Product, pricing *domain.Pricing) (*domain.Listing, error) {
	payload := c.buildPayload(product, pricing)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding payload: %v", domain.ErrListingFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/products.json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrListingFailed, err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: storefront unreachable: %v", domain.ErrListingFailed, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: storefront returned %d: %s", domain.ErrListingFailed, resp.StatusCode, string(respBody))
	}

	var created productResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", domain.ErrListingFailed, err)
	}

	if c.collectionID != "" {
		// Best effort: the listing exists either way, the buyer just
		// won't see it in the curated collection.
		if err := c.addToCollection(ctx, created.Product.ID); err != nil {
			c.logger.Warn("failed to add listing to collection",
				zap.Int64("product_id", created.Product.ID),
				zap.Error(err),
			)
		}
	}

	return &domain.Listing{
		ProductID:   created.Product.ID,
		Handle:      created.Product.Handle,
		CheckoutURL: fmt.Sprintf("https://%s/products/%s", c.storeDomain, created.Product.Handle),
		AdminURL:    fmt.Sprintf("https://%s/admin/products/%d", c.store, created.Product.ID),
	}, nil
}

func (c *Client) buildPayload(product *domain.Product, pricing *domain.Pricing) productPayload {
	var payload productPayload
	p := &payload.Product

	p.Title = product.Title
	p.BodyHTML = buildDescriptionHTML(product)
	p.Vendor = product.Brand
	if p.Vendor == "" {
		p.Vendor = "代購商品"
	}
	p.Type = "代購"
	p.Tags = []string{"代購", "daigo"}
	if product.Brand != "" {
		p.Tags = append(p.Tags, product.Brand)
	}
	p.Status = "active"

	// Proxy listings never track stock; the item is bought after the
	// order comes in.
	p.Variants = []variantPayload{{
		Price:            strconv.Itoa(pricing.SellingPriceJPY),
		InventoryMgmt:    nil,
		InventoryPolicy:  "continue",
		RequiresShipping: true,
	}}

	p.Metafields = []metafield{
		{Namespace: "daigo", Key: "source_url", Value: product.SourceURL, Type: "url"},
		{Namespace: "daigo", Key: "original_price_jpy", Value: strconv.Itoa(product.PriceJPY), Type: "number_integer"},
	}

	if product.ImageURL != "" {
		p.Images = append(p.Images, imagePayload{Src: product.ImageURL, Position: 1})
	}
	for i, img := range product.ExtraImages {
		if len(p.Images) >= maxListingImages {
			break
		}
		p.Images = append(p.Images, imagePayload{Src: img, Position: i + 2})
	}

	return payload
}

func (c *Client) addToCollection(ctx context.Context, productID int64) error {
	collectionID, err := strconv.ParseInt(c.collectionID, 10, 64)
	if err != nil {
		return fmt.Errorf("bad collection id %q: %w", c.collectionID, err)
	}

	body, err := json.Marshal(map[string]map[string]int64{
		"collect": {
			"product_id":    productID,
			"collection_id": collectionID,
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/collects.json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("collects returned %d", resp.StatusCode)
	}
	return nil
}

func buildDescriptionHTML(product *domain.Product) string {
	var b strings.Builder

	if product.Description != "" {
		b.WriteString("<p>" + product.Description + "</p>\n")
	}

	b.WriteString(`<div class="daigo-info" style="margin-top:16px; padding:12px; background:#f9f9f9; border-radius:8px; font-size:14px;">` + "\n")
	b.WriteString(`<p style="margin:0 0 8px 0;"><strong>🛒 代購商品資訊</strong></p>` + "\n")

	if product.PriceJPY > 0 {
		b.WriteString(fmt.Sprintf(`<p style="margin:0 0 4px 0;">日本原價：¥%s</p>`+"\n", formatThousands(product.PriceJPY)))
	}
	if product.SourceURL != "" {
		b.WriteString(fmt.Sprintf(`<p style="margin:0;"><a href="%s" target="_blank" rel="nofollow">查看原始商品頁面 →</a></p>`+"\n", product.SourceURL))
	}

	b.WriteString("</div>\n")
	b.WriteString(`<p style="margin-top:12px; font-size:13px; color:#666;">※ 本商品為日本代購，下單後約 7-14 個工作天到貨。</p>`)

	return b.String()
}

func formatThousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	return s + "," + strings.Join(parts, ",")
}
