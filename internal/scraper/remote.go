package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FetcherRemote is the name of the external fetch-agent strategy
const FetcherRemote = "remote"

// RemoteFetcher delegates rendering to an externally reachable fetch
// agent with fewer network restrictions. When configured it runs first
// in a chain, sparing a local browser launch; any error falls through
// to the local strategies. An empty endpoint makes every call return
// ErrNotConfigured so chains can list the strategy unconditionally.
type RemoteFetcher struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
}

// NewRemoteFetcher creates a remote fetcher for the given endpoint
func NewRemoteFetcher(endpoint string, timeout time.Duration) *RemoteFetcher {
	return &RemoteFetcher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		timeout:  timeout,
	}
}

// Name returns the strategy name
func (f *RemoteFetcher) Name() string { return FetcherRemote }

type remoteFetchRequest struct {
	URL       string `json:"url"`
	TimeoutMS int64  `json:"timeout_ms"`
}

type remoteFetchResponse struct {
	HTML  string `json:"html"`
	Error string `json:"error,omitempty"`
}

// Fetch asks the remote agent to render the URL
func (f *RemoteFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.endpoint == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(remoteFetchRequest{
		URL:       url,
		TimeoutMS: f.timeout.Milliseconds(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: remote agent returned %d", ErrNetwork, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading remote body: %v", ErrNetwork, err)
	}

	var out remoteFetchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		// Some agents return raw HTML instead of a JSON envelope.
		return string(body), nil
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: remote agent: %s", ErrNetwork, out.Error)
	}
	if out.HTML == "" {
		return "", fmt.Errorf("%w: remote agent returned empty document", ErrNetwork)
	}
	return out.HTML, nil
}
