package parser

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/omishoninjp-sys/daigo/internal/domain"
)

// fillFromOpenGraph fills missing fields from social-preview metadata.
// Nearly every storefront carries og:title and og:image; a few also
// expose the price through product:price:amount.
func fillFromOpenGraph(doc *goquery.Document, p *domain.Product) {
	og := map[string]string{}
	doc.Find("meta[property]").Each(func(_ int, s *goquery.Selection) {
		prop, _ := s.Attr("property")
		content, _ := s.Attr("content")
		if prop != "" && og[prop] == "" {
			og[prop] = content
		}
	})

	if p.Title == "" {
		p.Title = og["og:title"]
	}
	if p.ImageURL == "" {
		p.ImageURL = og["og:image"]
	}
	if p.Description == "" {
		p.Description = truncateRunes(og["og:description"], 500)
	}
	if p.PriceJPY == 0 {
		for _, key := range []string{"product:price:amount", "og:price:amount"} {
			if raw := og[key]; raw != "" {
				if price, err := NormalizePrice(raw); err == nil {
					p.PriceJPY = price
					break
				}
			}
		}
	}
}
