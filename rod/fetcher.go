// Package rod drives a Chrome browser to fetch rendered search results pages
// and to keep a live results page reconciled with the blocklist.
package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/serpblock"
)

// DefaultFetchTimeout bounds a single page fetch.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements serpblock.Fetcher at compile time.
var _ serpblock.Fetcher = (*Fetcher)(nil)

// Fetcher loads results pages in a headless browser so that results
// inserted by script are part of the returned HTML. Each fetch is bounded by
// the fetch timeout. Fetcher is safe for concurrent use.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
	closed  atomic.Bool
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*fetcherConfig)

type fetcherConfig struct {
	timeout  time.Duration
	managers []ManagerOption
}

// WithFetchTimeout sets the time allowed for loading a single page.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(c *fetcherConfig) {
		c.timeout = d
	}
}

// WithBrowserOptions passes options through to the BrowserManager.
func WithBrowserOptions(opts ...ManagerOption) FetcherOption {
	return func(c *fetcherConfig) {
		c.managers = append(c.managers, opts...)
	}
}

// NewFetcher launches the browser used for fetching. Close must be called
// when the Fetcher is no longer needed. An error means Chrome could not be
// started.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	cfg := fetcherConfig{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	manager, err := NewBrowserManager(cfg.managers...)
	if err != nil {
		return nil, err
	}

	return &Fetcher{manager: manager, timeout: cfg.timeout}, nil
}

// Fetch returns the rendered results page at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", serpblock.Errorf(serpblock.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return f.manager.FetchHTML(ctx, url)
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
