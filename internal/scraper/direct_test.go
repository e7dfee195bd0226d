package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectFetchReturnsBody(t *testing.T) {
	var gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte("<html><body>商品ページ</body></html>"))
	}))
	defer srv.Close()

	f := NewDirectFetcher("test-agent", 2*time.Second)
	html, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Contains(t, html, "商品ページ")
	assert.Contains(t, gotLang, "ja-JP", "Japanese storefronts localize on Accept-Language")
}

func TestDirectFetchBlockedStatuses(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		f := NewDirectFetcher("test-agent", 2*time.Second)
		_, err := f.Fetch(context.Background(), srv.URL)
		srv.Close()

		assert.ErrorIs(t, err, ErrBlocked, "status %d", status)
	}
}

func TestDirectFetchServerErrorIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewDirectFetcher("test-agent", 2*time.Second)
	_, err := f.Fetch(context.Background(), srv.URL)

	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrBlocked)
}

func TestDirectFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	f := NewDirectFetcher("test-agent", 10*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, srv.URL)

	assert.ErrorIs(t, err, ErrTimeout)
}

func TestDirectFetchUnreachableHost(t *testing.T) {
	f := NewDirectFetcher("test-agent", time.Second)
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/")

	assert.ErrorIs(t, err, ErrNetwork)
}
