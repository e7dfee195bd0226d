package scraper

import (
	"context"
	"errors"
)

// Fetch failure sentinels. The extractor recovers from all of these by
// advancing to the next strategy in the chain; only the handler layer
// turns them into API error codes.
var (
	ErrTimeout       = errors.New("fetch timed out")
	ErrBlocked       = errors.New("fetch blocked by bot defense")
	ErrNetwork       = errors.New("fetch network error")
	ErrNotConfigured = errors.New("fetcher not configured")
)

// Fetcher retrieves the document behind a URL. Implementations must
// honor ctx cancellation and release any held resource on every exit
// path; retries are the extractor's concern, never the fetcher's.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, url string) (string, error)
}
