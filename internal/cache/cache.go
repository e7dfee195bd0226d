package cache

import (
	"context"
	"time"
)

// Store is the small cache surface the extractor needs: short-lived
// product records keyed by URL, and per-host "blocked" marks used to
// skip strategies against sites that recently tripped bot defenses.
type Store interface {
	GetProduct(ctx context.Context, url string) ([]byte, bool)
	SetProduct(ctx context.Context, url string, record []byte, ttl time.Duration) error
	MarkBlocked(ctx context.Context, host string, ttl time.Duration) error
	IsBlocked(ctx context.Context, host string) bool
	Close() error
}

// Noop satisfies Store when caching is disabled
type Noop struct{}

func (Noop) GetProduct(context.Context, string) ([]byte, bool)              { return nil, false }
func (Noop) SetProduct(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) MarkBlocked(context.Context, string, time.Duration) error        { return nil }
func (Noop) IsBlocked(context.Context, string) bool                          { return false }
func (Noop) Close() error                                                    { return nil }
