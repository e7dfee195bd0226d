package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/omishoninjp-sys/daigo/internal/domain"
)

var (
	yenPrefixPattern = regexp.MustCompile(`[¥￥]\s*([0-9,]+)`)
	yenSuffixPattern = regexp.MustCompile(`([0-9,]+)\s*円`)
)

// Plausible bounds for a heuristic yen price; anything outside is more
// likely a point balance, review count or SKU.
const (
	heuristicPriceMin = 100
	heuristicPriceMax = 9_999_999
)

// GenericParser is the catch-all for unclassified sites. It tries, in
// order: structured product data (JSON-LD), Open Graph metadata, then a
// heuristic scan of price-ish elements and visible yen amounts.
type GenericParser struct{}

// NewGenericParser creates the catch-all parser
func NewGenericParser() *GenericParser { return &GenericParser{} }

// Parse extracts a product record
func (gp *GenericParser) Parse(html, pageURL string) (*domain.Product, error) {
	doc, err := newDocument(html)
	if err != nil {
		return nil, err
	}

	p := &domain.Product{Site: domain.SiteGeneric}

	fillFromJSONLD(doc, p)
	fillFromOpenGraph(doc, p)

	if p.Title == "" {
		p.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if p.ImageURL == "" {
		p.ImageURL = gp.findProductImage(doc)
	}
	if p.PriceJPY == 0 {
		p.PriceJPY = gp.findPrice(doc)
	}

	if p.Title == "" && p.PriceJPY == 0 {
		return nil, ErrMissingTitle
	}
	return finalize(p, pageURL)
}

// findPrice scans common price anchors first, then falls back to the
// most frequent plausible yen amount in the visible text, which in
// practice is the listed selling price.
func (gp *GenericParser) findPrice(doc *goquery.Document) int {
	selectors := []string{
		`[class*="price"]`,
		`[class*="Price"]`,
		`[id*="price"]`,
		`[class*="amount"]`,
		`[data-price]`,
	}

	for _, sel := range selectors {
		found := 0
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if price := extractJPYPrice(s.Text()); price > 0 {
				found = price
				return false
			}
			if raw, ok := s.Attr("data-price"); ok {
				if price, err := NormalizePrice(raw); err == nil {
					found = price
					return false
				}
			}
			return true
		})
		if found > 0 {
			return found
		}
	}

	return gp.mostFrequentYenAmount(doc.Text())
}

func (gp *GenericParser) mostFrequentYenAmount(text string) int {
	counts := map[int]int{}
	for _, pattern := range []*regexp.Regexp{yenPrefixPattern, yenSuffixPattern} {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			price, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
			if err != nil || price < heuristicPriceMin || price > heuristicPriceMax {
				continue
			}
			counts[price]++
		}
	}

	best, bestCount := 0, 0
	for price, count := range counts {
		if count > bestCount || (count == bestCount && price < best) {
			best, bestCount = price, count
		}
	}
	return best
}

// findProductImage prefers images whose alt hints at a product shot,
// then the first image that is not obvious chrome.
func (gp *GenericParser) findProductImage(doc *goquery.Document) string {
	found := ""
	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		alt, _ := s.Attr("alt")
		altLower := strings.ToLower(alt)
		for _, kw := range []string{"product", "商品", "item"} {
			if strings.Contains(altLower, kw) && src != "" {
				found = src
				return false
			}
		}
		return true
	})
	if found != "" {
		return found
	}

	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		srcLower := strings.ToLower(src)
		for _, skip := range []string{"logo", "icon", "banner", "sprite"} {
			if strings.Contains(srcLower, skip) {
				return true
			}
		}
		found = src
		return false
	})
	return found
}
