package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/omishoninjp-sys/daigo/internal/config"
)

// RateProvider owns the process-wide JPY to TWD conversion rate. The
// cached value is refreshed from the exchange-rate endpoint once it is
// older than the TTL; concurrent refreshes collapse to a single
// upstream call. A fixed configured rate disables fetching entirely,
// and fetch failures degrade to the last known or default rate instead
// of failing the caller.
type RateProvider struct {
	endpoint string
	fixed    float64
	fallback float64
	ttl      time.Duration

	client *http.Client
	now    func() time.Time
	logger *zap.Logger

	mu        sync.RWMutex
	cached    float64
	fetchedAt time.Time

	group singleflight.Group
}

// NewRateProvider creates a rate provider from pricing configuration
func NewRateProvider(cfg config.PricingConfig, logger *zap.Logger) *RateProvider {
	return &RateProvider{
		endpoint: cfg.RateEndpoint,
		fixed:    cfg.FixedTWDRate,
		fallback: cfg.DefaultTWDRate,
		ttl:      cfg.RateTTL,
		client:   &http.Client{Timeout: 5 * time.Second},
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the provider's clock, for tests
func (p *RateProvider) WithClock(now func() time.Time) *RateProvider {
	p.now = now
	return p
}

// WithHTTPClient replaces the provider's HTTP client, for tests
func (p *RateProvider) WithHTTPClient(c *http.Client) *RateProvider {
	p.client = c
	return p
}

// Rate returns the current JPY to TWD rate. The second return is true
// when the value is a stale or default fallback rather than a fresh
// upstream quote.
func (p *RateProvider) Rate(ctx context.Context) (float64, bool) {
	if p.fixed > 0 {
		return p.fixed, false
	}

	p.mu.RLock()
	cached, fetchedAt := p.cached, p.fetchedAt
	p.mu.RUnlock()

	if cached > 0 && p.now().Sub(fetchedAt) < p.ttl {
		return cached, false
	}

	v, err, _ := p.group.Do("jpy_twd", func() (interface{}, error) {
		return p.fetch(ctx)
	})
	if err != nil {
		p.logger.Warn("rate refresh failed, serving fallback", zap.Error(err))
		if cached > 0 {
			return cached, true
		}
		return p.fallback, true
	}

	rate := v.(float64)
	p.mu.Lock()
	p.cached = rate
	p.fetchedAt = p.now()
	p.mu.Unlock()

	return rate, false
}

func (p *RateProvider) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return 0, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("rate endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate endpoint returned %d", resp.StatusCode)
	}

	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("rate endpoint body: %w", err)
	}

	rate, ok := body.Rates["TWD"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("rate endpoint has no TWD rate")
	}
	return rate, nil
}
