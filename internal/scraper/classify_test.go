package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omishoninjp-sys/daigo/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected domain.Site
	}{
		{"amazon product page", "https://www.amazon.co.jp/dp/B0ABCDEF", domain.SiteAmazon},
		{"amazon without www", "https://amazon.co.jp/dp/B0ABCDEF", domain.SiteAmazon},
		{"rakuten item page", "https://item.rakuten.co.jp/shop/item123/", domain.SiteRakuten},
		{"rakuten top host", "https://www.rakuten.co.jp/shop/", domain.SiteRakuten},
		{"zozotown goods page", "https://zozo.jp/shop/brand/goods/12345/", domain.SiteZozo},
		{"zozotown with www", "https://www.zozo.jp/shop/brand/goods/12345/", domain.SiteZozo},
		{"unknown shop", "https://store.example.jp/products/tee", domain.SiteGeneric},
		{"lookalike host is not a match", "https://amazon.co.jp.evil.example/dp/B0", domain.SiteGeneric},
		{"no scheme", "not-a-url", domain.SiteInvalid},
		{"empty", "", domain.SiteInvalid},
		{"non-http scheme", "ftp://amazon.co.jp/dp/B0", domain.SiteInvalid},
		{"scheme only", "https://", domain.SiteInvalid},
		{"leading whitespace tolerated", "  https://zozo.jp/goods/1/", domain.SiteZozo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.url))
		})
	}
}

func TestHost(t *testing.T) {
	assert.Equal(t, "item.rakuten.co.jp", Host("https://item.rakuten.co.jp/shop/item/"))
	assert.Equal(t, "", Host("://bad"))
}
