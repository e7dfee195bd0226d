package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/omishoninjp-sys/daigo/internal/domain"
)

// ZozoParser extracts products from zozo.jp. The site's markup shifts
// often and prices only exist in the post-JavaScript DOM, so this
// parser expects rendered HTML and leans on meta-tag fallbacks whenever
// the primary anchors are gone.
type ZozoParser struct{}

// NewZozoParser creates a ZOZOTOWN parser
func NewZozoParser() *ZozoParser { return &ZozoParser{} }

// Parse extracts a product record from rendered HTML
func (zp *ZozoParser) Parse(html, pageURL string) (*domain.Product, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	p := &domain.Product{Site: domain.SiteZozo}

	p.Title = strings.TrimSpace(doc.Find("h1[class*='goodsName'], h1").First().Text())

	doc.Find("[class*='price'], [class*='Price']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if price := extractJPYPrice(s.Text()); price > 0 {
			p.PriceJPY = price
			return false
		}
		return true
	})

	if brand := strings.TrimSpace(doc.Find("[class*='brandName'] a, [class*='brand'] a").First().Text()); brand != "" {
		p.Brand = brand
	}

	fillFromJSONLD(doc, p)
	fillFromOpenGraph(doc, p)

	if p.Title == "" && p.PriceJPY == 0 {
		return nil, ErrMissingTitle
	}
	return finalize(p, pageURL)
}
