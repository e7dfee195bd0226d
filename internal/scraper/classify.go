package scraper

import (
	"net/url"
	"strings"

	"github.com/omishoninjp-sys/daigo/internal/domain"
)

// hostTable maps host suffixes to sites; first match wins. Adding a
// marketplace means one entry here plus a route in the extractor.
var hostTable = []struct {
	suffix string
	site   domain.Site
}{
	{"amazon.co.jp", domain.SiteAmazon},
	{"rakuten.co.jp", domain.SiteRakuten},
	{"zozo.jp", domain.SiteZozo},
}

// Classify maps a raw URL to its site category. Malformed input (no
// scheme, no host, or a non-http scheme) yields SiteInvalid and never
// reaches a fetch strategy.
func Classify(rawURL string) domain.Site {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return domain.SiteInvalid
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return domain.SiteInvalid
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return domain.SiteInvalid
	}

	for _, entry := range hostTable {
		if host == entry.suffix || strings.HasSuffix(host, "."+entry.suffix) {
			return entry.site
		}
	}
	return domain.SiteGeneric
}

// Host returns the lowercased hostname of a URL, or "" when absent
func Host(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
