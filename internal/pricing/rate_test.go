package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omishoninjp-sys/daigo/internal/config"
)

func rateServer(t *testing.T, calls *atomic.Int64, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRateFixedShortCircuits(t *testing.T) {
	var calls atomic.Int64
	srv := rateServer(t, &calls, `{"rates":{"TWD":0.25}}`, http.StatusOK)

	p := NewRateProvider(config.PricingConfig{
		FixedTWDRate: 0.22,
		RateEndpoint: srv.URL,
		RateTTL:      time.Hour,
	}, zap.NewNop())

	rate, stale := p.Rate(context.Background())
	assert.Equal(t, 0.22, rate)
	assert.False(t, stale)
	assert.Equal(t, int64(0), calls.Load(), "fixed rate must not hit the endpoint")
}

func TestRateFetchAndCache(t *testing.T) {
	var calls atomic.Int64
	srv := rateServer(t, &calls, `{"rates":{"TWD":0.25}}`, http.StatusOK)

	now := time.Unix(1_700_000_000, 0)
	p := NewRateProvider(config.PricingConfig{
		RateEndpoint:   srv.URL,
		RateTTL:        time.Hour,
		DefaultTWDRate: 0.21,
	}, zap.NewNop()).WithClock(func() time.Time { return now })

	rate, stale := p.Rate(context.Background())
	require.Equal(t, 0.25, rate)
	assert.False(t, stale)

	// Within TTL: served from cache, no second upstream call.
	now = now.Add(30 * time.Minute)
	rate, stale = p.Rate(context.Background())
	assert.Equal(t, 0.25, rate)
	assert.False(t, stale)
	assert.Equal(t, int64(1), calls.Load())

	// Past TTL: refreshed.
	now = now.Add(31 * time.Minute)
	_, _ = p.Rate(context.Background())
	assert.Equal(t, int64(2), calls.Load())
}

func TestRateFallsBackToLastKnown(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"rates":{"TWD":0.25}}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	now := time.Unix(1_700_000_000, 0)
	p := NewRateProvider(config.PricingConfig{
		RateEndpoint:   srv.URL,
		RateTTL:        time.Hour,
		DefaultTWDRate: 0.21,
	}, zap.NewNop()).WithClock(func() time.Time { return now })

	rate, stale := p.Rate(context.Background())
	require.Equal(t, 0.25, rate)
	require.False(t, stale)

	now = now.Add(2 * time.Hour)
	rate, stale = p.Rate(context.Background())
	assert.Equal(t, 0.25, rate, "stale cached rate beats the default")
	assert.True(t, stale)
}

func TestRateFallsBackToDefault(t *testing.T) {
	var calls atomic.Int64
	srv := rateServer(t, &calls, `oops`, http.StatusInternalServerError)

	p := NewRateProvider(config.PricingConfig{
		RateEndpoint:   srv.URL,
		RateTTL:        time.Hour,
		DefaultTWDRate: 0.21,
	}, zap.NewNop())

	rate, stale := p.Rate(context.Background())
	assert.Equal(t, 0.21, rate)
	assert.True(t, stale)
}

func TestRateMissingTWDIsFailure(t *testing.T) {
	var calls atomic.Int64
	srv := rateServer(t, &calls, `{"rates":{"USD":0.0067}}`, http.StatusOK)

	p := NewRateProvider(config.PricingConfig{
		RateEndpoint:   srv.URL,
		RateTTL:        time.Hour,
		DefaultTWDRate: 0.21,
	}, zap.NewNop())

	rate, stale := p.Rate(context.Background())
	assert.Equal(t, 0.21, rate)
	assert.True(t, stale)
}
