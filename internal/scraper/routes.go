package scraper

import (
	"github.com/omishoninjp-sys/daigo/internal/config"
	"github.com/omishoninjp-sys/daigo/internal/domain"
	"github.com/omishoninjp-sys/daigo/internal/parser"
)

// BuildRoutes assembles the per-site strategy chains.
//
//   - amazon:   direct only; the site serves full markup to a plain GET
//     and a browser there is wasted latency.
//   - rakuten:  direct first, generic browser when the light fetch is
//     rejected.
//   - zozotown: remote agent first (the site blocks datacenter IPs),
//     then the stealth browser.
//   - generic:  remote agent first when configured, otherwise the plain
//     headless browser.
func BuildRoutes(cfg config.ScraperConfig, genericPool, stealthPool *BrowserPool) map[domain.Site]Route {
	direct := NewDirectFetcher(cfg.UserAgent, cfg.DirectTimeout)
	browser := NewBrowserFetcher(genericPool, cfg.BrowserTimeout)
	stealth := NewStealthFetcher(stealthPool, cfg.BrowserTimeout)
	remote := NewRemoteFetcher(cfg.RemoteEndpoint, cfg.BrowserTimeout)

	return map[domain.Site]Route{
		domain.SiteAmazon: {
			Chain:  []Fetcher{direct},
			Parser: parser.NewAmazonParser(),
		},
		domain.SiteRakuten: {
			Chain:  []Fetcher{direct, browser},
			Parser: parser.NewRakutenParser(),
		},
		domain.SiteZozo: {
			Chain:  []Fetcher{remote, stealth},
			Parser: parser.NewZozoParser(),
		},
		domain.SiteGeneric: {
			Chain:  []Fetcher{remote, browser},
			Parser: parser.NewGenericParser(),
		},
	}
}
