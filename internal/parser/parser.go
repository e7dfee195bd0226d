package parser

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/omishoninjp-sys/daigo/internal/domain"
)

// Parse failure sentinels. A parse failure on a successfully fetched
// document is terminal for the request; the extractor never re-fetches
// with another strategy to work around one.
var (
	ErrMissingTitle   = errors.New("no product title in document")
	ErrMissingPrice   = errors.New("no product price in document")
	ErrMalformedPrice = errors.New("price field is not numeric")
	ErrEmptyDocument  = errors.New("empty document")
)

// Parser extracts a product record from a fetched document
type Parser interface {
	Parse(html, pageURL string) (*domain.Product, error)
}

func newDocument(html string) (*goquery.Document, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrEmptyDocument
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, ErrEmptyDocument
	}
	return doc, nil
}

// finalize applies the shared record invariants: a positive integer
// price is mandatory, a missing title degrades to the placeholder, and
// relative image URLs are resolved against the page.
func finalize(p *domain.Product, pageURL string) (*domain.Product, error) {
	if p.PriceJPY <= 0 {
		return nil, ErrMissingPrice
	}

	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		p.Title = domain.TitlePlaceholder
	}

	p.SourceURL = pageURL
	if p.Currency == "" {
		p.Currency = "JPY"
	}
	p.ImageURL = absolutizeURL(p.ImageURL, pageURL)
	for i, img := range p.ExtraImages {
		p.ExtraImages[i] = absolutizeURL(img, pageURL)
	}

	return p, nil
}
