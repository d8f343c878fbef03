package serpblock

import "context"

// Fetcher retrieves the HTML of a search results page.
// Implementations may use browser automation to handle JavaScript-rendered results.
type Fetcher interface {
	// Fetch loads the URL and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// DomainLimiter paces requests to search engines.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to host.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, host string) error

	// Throttle slows down requests to host after the engine reported it
	// is overloaded.
	Throttle(host string)
}
