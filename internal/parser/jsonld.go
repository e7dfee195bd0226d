package parser

import (
	"encoding/json"

	"github.com/PuerkitoBio/goquery"

	"github.com/omishoninjp-sys/daigo/internal/domain"
)

// ldProduct is the subset of schema.org Product we care about. image,
// brand and offers all appear in several shapes in the wild, so they
// are decoded loosely.
type ldProduct struct {
	Type        string          `json:"@type"`
	Graph       []ldProduct     `json:"@graph"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       json.RawMessage `json:"image"`
	Brand       json.RawMessage `json:"brand"`
	Offers      json.RawMessage `json:"offers"`
}

type ldOffer struct {
	Price         json.RawMessage `json:"price"`
	LowPrice      json.RawMessage `json:"lowPrice"`
	PriceCurrency string          `json:"priceCurrency"`
}

// fillFromJSONLD scans the page's ld+json scripts for a Product node
// and fills any fields the record is still missing. Malformed scripts
// are skipped, never fatal.
func fillFromJSONLD(doc *goquery.Document, p *domain.Product) {
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		node, ok := decodeProductNode([]byte(s.Text()))
		if !ok {
			return true
		}

		if p.Title == "" {
			p.Title = node.Name
		}
		if p.Description == "" {
			p.Description = truncateRunes(node.Description, 500)
		}
		if p.ImageURL == "" {
			p.ImageURL = decodeImage(node.Image)
		}
		if p.Brand == "" {
			p.Brand = decodeBrand(node.Brand)
		}
		if p.PriceJPY == 0 {
			price, currency := decodeOffers(node.Offers)
			if price > 0 {
				p.PriceJPY = price
				if currency != "" {
					p.Currency = currency
				}
			}
		}

		return !(p.Title != "" && p.PriceJPY > 0)
	})
}

func decodeProductNode(raw []byte) (ldProduct, bool) {
	// Top level may be a single node, an array, or a @graph container.
	var one ldProduct
	if err := json.Unmarshal(raw, &one); err == nil {
		if isProductType(one.Type) {
			return one, true
		}
		for _, g := range one.Graph {
			if isProductType(g.Type) {
				return g, true
			}
		}
	}

	var many []ldProduct
	if err := json.Unmarshal(raw, &many); err == nil {
		for _, n := range many {
			if isProductType(n.Type) {
				return n, true
			}
		}
	}
	return ldProduct{}, false
}

func isProductType(t string) bool {
	return t == "Product" || t == "IndividualProduct"
}

func decodeImage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		return list[0]
	}
	var obj struct {
		URL string `json:"url"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.URL
	}
	return ""
}

func decodeBrand(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Name string `json:"name"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Name
	}
	return ""
}

func decodeOffers(raw json.RawMessage) (int, string) {
	if len(raw) == 0 {
		return 0, ""
	}

	var offer ldOffer
	if json.Unmarshal(raw, &offer) != nil {
		var offers []ldOffer
		if json.Unmarshal(raw, &offers) != nil || len(offers) == 0 {
			return 0, ""
		}
		offer = offers[0]
	}

	price := decodePriceValue(offer.Price)
	if price == 0 {
		price = decodePriceValue(offer.LowPrice)
	}
	return price, offer.PriceCurrency
}

func decodePriceValue(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if json.Unmarshal(raw, &n) == nil && n > 0 {
		return int(n)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if price, err := NormalizePrice(s); err == nil {
			return price
		}
	}
	return 0
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
