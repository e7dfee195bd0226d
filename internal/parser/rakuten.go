package parser

import (
	"strings"

	"github.com/omishoninjp-sys/daigo/internal/domain"
)

// RakutenParser extracts products from item.rakuten.co.jp pages. Price
// fields arrive with currency symbols and thousands separators and must
// normalize to a whole-yen integer; anything non-numeric after
// stripping is a malformed price, not a missing one.
type RakutenParser struct{}

// NewRakutenParser creates a Rakuten Ichiba parser
func NewRakutenParser() *RakutenParser { return &RakutenParser{} }

// Parse extracts a product record
func (rp *RakutenParser) Parse(html, pageURL string) (*domain.Product, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	p := &domain.Product{Site: domain.SiteRakuten}

	p.Title = strings.TrimSpace(doc.Find("span.item_name").First().Text())
	if p.Title == "" {
		p.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	priceText := ""
	for _, sel := range []string{".price2", ".item_price", "[class*='price']"} {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			priceText = text
			break
		}
	}
	if priceText != "" {
		price, err := NormalizePrice(priceText)
		if err != nil {
			return nil, err
		}
		p.PriceJPY = price
	}

	if src, ok := doc.Find(".image_main img, meta[property='og:image']").First().Attr("src"); ok {
		p.ImageURL = src
	}

	fillFromJSONLD(doc, p)
	fillFromOpenGraph(doc, p)

	if p.Title == "" && p.PriceJPY == 0 {
		return nil, ErrMissingTitle
	}
	return finalize(p, pageURL)
}
