package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// BrowserConfig configures the shared browser allocator
type BrowserConfig struct {
	Headless     bool
	UserAgent    string
	PoolSize     int
	WindowWidth  int
	WindowHeight int
	ProxyURL     string
	Stealth      bool
}

// DefaultBrowserConfig returns sensible defaults
func DefaultBrowserConfig() *BrowserConfig {
	return &BrowserConfig{
		Headless:     true,
		UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		PoolSize:     2,
		WindowWidth:  1920,
		WindowHeight: 1080,
	}
}

// BrowserPool shares one chromedp allocator across requests and bounds
// concurrent page use with a semaphore. Launching a full browser per
// request is too expensive, so tabs are leased: AcquirePage blocks
// until a slot frees or the caller's deadline expires, and the returned
// release func must run on every exit path.
type BrowserPool struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	sem      chan struct{}
	logger   *zap.Logger
}

// NewBrowserPool creates a pool backed by a single exec allocator
func NewBrowserPool(logger *zap.Logger, cfg *BrowserConfig) (*BrowserPool, error) {
	if cfg == nil {
		cfg = DefaultBrowserConfig()
	}
	if cfg.PoolSize <= 0 {
		return nil, errors.New("browser pool size must be positive")
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	}
	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if cfg.ProxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(cfg.ProxyURL))
	}
	if cfg.Stealth {
		opts = append(opts,
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.Flag("exclude-switches", "enable-automation"),
			chromedp.Flag("disable-infobars", true),
			chromedp.Flag("lang", "ja-JP"),
		)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &BrowserPool{
		allocCtx: allocCtx,
		cancel:   cancel,
		sem:      make(chan struct{}, cfg.PoolSize),
		logger:   logger,
	}, nil
}

// AcquirePage leases a tab slot and returns a tab context plus its
// release func. Acquisition honors ctx, so a saturated pool degrades to
// a timeout error instead of queueing past the request budget.
func (p *BrowserPool) AcquirePage(ctx context.Context) (context.Context, func(), error) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%w: browser pool saturated: %v", ErrTimeout, ctx.Err())
	}

	tabCtx, tabCancel := chromedp.NewContext(p.allocCtx)
	if deadline, ok := ctx.Deadline(); ok {
		tabCtx, tabCancel = context.WithDeadline(tabCtx, deadline)
	}

	released := false
	release := func() {
		if released {
			return
		}
		released = true
		tabCancel()
		<-p.sem
	}
	return tabCtx, release, nil
}

// InUse reports how many tab slots are currently leased; tests use it
// to verify that every fetch path releases its slot.
func (p *BrowserPool) InUse() int { return len(p.sem) }

// Size returns the pool capacity
func (p *BrowserPool) Size() int { return cap(p.sem) }

// Close shuts down the allocator and any remaining browser processes
func (p *BrowserPool) Close() { p.cancel() }

// fetchRendered navigates a leased tab and returns the rendered outer
// HTML once waitSelector (or body readiness) is satisfied.
func (p *BrowserPool) fetchRendered(tabCtx context.Context, url, waitSelector string, settle time.Duration, prelude ...chromedp.Action) (string, error) {
	var html string

	actions := append([]chromedp.Action{}, prelude...)
	actions = append(actions, chromedp.Navigate(url))
	if waitSelector != "" {
		actions = append(actions, chromedp.WaitVisible(waitSelector, chromedp.ByQuery))
	} else {
		actions = append(actions, chromedp.WaitReady("body", chromedp.ByQuery))
	}
	if settle > 0 {
		actions = append(actions, chromedp.Sleep(settle))
	}
	actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
		return err
	}))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	p.logger.Debug("page rendered", zap.String("url", url), zap.Int("length", len(html)))
	return html, nil
}

// FetcherBrowser is the name of the generic headless strategy
const FetcherBrowser = "browser"

// BrowserFetcher renders pages with a plain headless tab, the default
// strategy for unclassified sites.
type BrowserFetcher struct {
	pool    *BrowserPool
	timeout time.Duration
}

// NewBrowserFetcher creates a generic browser fetcher over a pool
func NewBrowserFetcher(pool *BrowserPool, timeout time.Duration) *BrowserFetcher {
	return &BrowserFetcher{pool: pool, timeout: timeout}
}

// Name returns the strategy name
func (f *BrowserFetcher) Name() string { return FetcherBrowser }

// Fetch renders the URL and returns its HTML
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	tabCtx, release, err := f.pool.AcquirePage(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	return f.pool.fetchRendered(tabCtx, url, "", 0)
}
