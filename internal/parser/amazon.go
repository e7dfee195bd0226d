package parser

import (
	"strings"

	"github.com/omishoninjp-sys/daigo/internal/domain"
)

// AmazonParser extracts products from amazon.co.jp pages. The markup
// anchors are stable across the current and legacy price layouts;
// structured data fills whatever the anchors miss.
type AmazonParser struct{}

// NewAmazonParser creates an amazon.co.jp parser
func NewAmazonParser() *AmazonParser { return &AmazonParser{} }

// Parse extracts a product record
func (ap *AmazonParser) Parse(html, pageURL string) (*domain.Product, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	p := &domain.Product{Site: domain.SiteAmazon}

	p.Title = strings.TrimSpace(doc.Find("#productTitle").Text())

	if text := doc.Find(".a-price .a-offscreen").First().Text(); text != "" {
		p.PriceJPY = extractJPYPrice(text)
	}
	if p.PriceJPY == 0 {
		// Legacy price block layout
		for _, sel := range []string{"#priceblock_ourprice", "#priceblock_dealprice"} {
			if text := doc.Find(sel).Text(); text != "" {
				p.PriceJPY = extractJPYPrice(text)
				break
			}
		}
	}

	img := doc.Find("#landingImage, #imgBlkFront").First()
	if hires, ok := img.Attr("data-old-hires"); ok && hires != "" {
		p.ImageURL = hires
	} else if src, ok := img.Attr("src"); ok {
		p.ImageURL = src
	}

	if byline := strings.TrimSpace(doc.Find("#bylineInfo").Text()); byline != "" {
		p.Brand = strings.NewReplacer("ブランド: ", "", "のストアを表示", "").Replace(byline)
	}

	fillFromJSONLD(doc, p)

	if p.Title == "" && p.PriceJPY == 0 {
		return nil, ErrMissingTitle
	}
	return finalize(p, pageURL)
}
