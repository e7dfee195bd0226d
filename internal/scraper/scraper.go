package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/omishoninjp-sys/daigo/internal/cache"
	"github.com/omishoninjp-sys/daigo/internal/domain"
	"github.com/omishoninjp-sys/daigo/internal/parser"
)

// Route pairs a site's ordered fetch-strategy chain with its parser.
// Strategies are tried strictly in order, never raced: browser work is
// expensive and racing it would multiply load exactly when a site is
// already failing.
type Route struct {
	Chain  []Fetcher
	Parser parser.Parser
}

// attempt records one strategy try, for logging and fallback decisions
// only; it is dropped once the request settles.
type attempt struct {
	strategy string
	outcome  string
	duration time.Duration
}

// Extractor runs the classify, fetch, parse pipeline for one URL
type Extractor struct {
	routes   map[domain.Site]Route
	store    cache.Store
	ttl      time.Duration
	blockTTL time.Duration
	budget   time.Duration
	logger   *zap.Logger
}

// NewExtractor creates an extractor with the given site routes
func NewExtractor(routes map[domain.Site]Route, store cache.Store, logger *zap.Logger) *Extractor {
	if store == nil {
		store = cache.Noop{}
	}
	return &Extractor{
		routes:   routes,
		store:    store,
		ttl:      10 * time.Minute,
		blockTTL: 8 * time.Minute,
		budget:   60 * time.Second,
		logger:   logger,
	}
}

// WithBudget sets the overall wall-clock budget per extraction
func (e *Extractor) WithBudget(budget time.Duration) *Extractor {
	e.budget = budget
	return e
}

// WithCacheTTL sets the product and blocked-host cache lifetimes
func (e *Extractor) WithCacheTTL(product, blocked time.Duration) *Extractor {
	e.ttl = product
	e.blockTTL = blocked
	return e
}

// Routes returns a per-site summary of configured strategy chains
func (e *Extractor) Routes() map[string][]string {
	out := make(map[string][]string, len(e.routes))
	for site, route := range e.routes {
		names := make([]string, len(route.Chain))
		for i, f := range route.Chain {
			names[i] = f.Name()
		}
		out[string(site)] = names
	}
	return out
}

// Extract resolves a URL to a product record. Fetch failures advance
// the chain; a parse failure on a fetched document terminates the
// request, since a page that fetched but no longer parses will not
// improve under a different fetch strategy.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*domain.Product, error) {
	site := Classify(rawURL)
	if site == domain.SiteInvalid {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidURL, rawURL)
	}

	route, ok := e.routes[site]
	if !ok || len(route.Chain) == 0 {
		return nil, fmt.Errorf("%w: no route for site %s", domain.ErrExtractionExhausted, site)
	}

	if data, ok := e.store.GetProduct(ctx, rawURL); ok {
		var cached domain.Product
		if json.Unmarshal(data, &cached) == nil && cached.Valid() {
			e.logger.Debug("product served from cache", zap.String("url", rawURL))
			return &cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.budget)
	defer cancel()

	host := Host(rawURL)
	hostBlocked := e.store.IsBlocked(ctx, host)

	var attempts []attempt
	var lastErr error

	for _, fetcher := range route.Chain {
		if hostBlocked && fetcher.Name() == FetcherDirect {
			// A recently tripped bot defense will trip again; go
			// straight to the rendering strategies.
			attempts = append(attempts, attempt{strategy: fetcher.Name(), outcome: "skipped_blocked_host"})
			continue
		}

		start := time.Now()
		html, err := fetcher.Fetch(ctx, rawURL)
		elapsed := time.Since(start)

		if err != nil {
			attempts = append(attempts, attempt{fetcher.Name(), outcomeOf(err), elapsed})
			lastErr = err

			if errors.Is(err, ErrBlocked) && host != "" {
				if markErr := e.store.MarkBlocked(ctx, host, e.blockTTL); markErr != nil {
					e.logger.Warn("failed to mark host blocked", zap.Error(markErr))
				}
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}

		attempts = append(attempts, attempt{fetcher.Name(), "fetched", elapsed})

		product, err := route.Parser.Parse(html, rawURL)
		if err != nil {
			e.logAttempts(rawURL, site, attempts)
			return nil, wrapParseError(err)
		}
		product.Site = site

		if data, err := json.Marshal(product); err == nil {
			if err := e.store.SetProduct(ctx, rawURL, data, e.ttl); err != nil {
				e.logger.Warn("failed to cache product", zap.Error(err))
			}
		}

		e.logAttempts(rawURL, site, attempts)
		return product, nil
	}

	e.logAttempts(rawURL, site, attempts)
	if lastErr == nil {
		lastErr = ErrNotConfigured
	}
	return nil, fmt.Errorf("%w: %w", domain.ErrExtractionExhausted, wrapFetchError(lastErr))
}

func (e *Extractor) logAttempts(url string, site domain.Site, attempts []attempt) {
	fields := []zap.Field{
		zap.String("url", url),
		zap.String("site", string(site)),
	}
	for _, a := range attempts {
		fields = append(fields, zap.String("attempt_"+a.strategy, fmt.Sprintf("%s (%s)", a.outcome, a.duration.Round(time.Millisecond))))
	}
	e.logger.Info("extraction finished", fields...)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrBlocked):
		return "blocked"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	default:
		return "error"
	}
}

func wrapFetchError(err error) error {
	switch {
	case errors.Is(err, ErrTimeout):
		return fmt.Errorf("%w: %v", domain.ErrFetchTimeout, err)
	case errors.Is(err, ErrBlocked):
		return fmt.Errorf("%w: %v", domain.ErrFetchBlocked, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrFetchNetwork, err)
	}
}

func wrapParseError(err error) error {
	switch {
	case errors.Is(err, parser.ErrMalformedPrice):
		return fmt.Errorf("%w: %v", domain.ErrParseMalformed, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrParseMissingField, err)
	}
}
