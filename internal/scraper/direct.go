package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FetcherDirect is the name of the plain HTTP strategy
const FetcherDirect = "direct"

// DirectFetcher issues a single HTTP GET with realistic browser
// headers. It is the cheapest strategy and fails fast; sites that need
// JavaScript rendering or bot-challenge bypass go through a browser
// fetcher instead.
type DirectFetcher struct {
	client    *http.Client
	userAgent string
}

// NewDirectFetcher creates a direct HTTP fetcher with the given budget
func NewDirectFetcher(userAgent string, timeout time.Duration) *DirectFetcher {
	return &DirectFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
	}
}

// Name returns the strategy name
func (f *DirectFetcher) Name() string { return FetcherDirect }

// Fetch performs the GET and returns the response body
func (f *DirectFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja-JP,ja;q=0.9,en;q=0.8,zh-TW;q=0.7")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return "", fmt.Errorf("%w: status %d", ErrBlocked, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", ErrNetwork, err)
	}
	return string(body), nil
}
