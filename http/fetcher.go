package http

import (
	"context"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/fwojciec/serpblock"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies a desktop browser so that results pages
// carry their full markup.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// DefaultLanguage is sent as Accept-Language. The result selectors follow
// the markup served for it.
const DefaultLanguage = "en-US,en;q=0.9"

// MaxPageSize caps the bytes read from a single results page.
const MaxPageSize = 5 << 20

// Ensure Fetcher implements serpblock.Fetcher at compile time.
var _ serpblock.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves results pages with plain HTTP requests. Results an
// engine renders client-side are missing from the page; rod.Fetcher covers
// those.
//
// Failures carry serpblock error codes: EUNAVAILABLE when the engine is
// throttling or failing and a later attempt may succeed, ENOTFOUND for a
// missing page, EINVALID for any other refusal or for a response that is
// not an HTML page.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	language  string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithLanguage sets the Accept-Language header sent with every request.
func WithLanguage(lang string) Option {
	return func(f *Fetcher) {
		f.language = lang
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
		language:  DefaultLanguage,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the results page at url and returns it decoded to UTF-8.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", serpblock.Errorf(serpblock.EINVALID, "invalid page URL %q", url)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if f.language != "" {
		req.Header.Set("Accept-Language", f.language)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", serpblock.Errorf(serpblock.EUNAVAILABLE, "fetching %s: %v", url, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp, url); err != nil {
		return "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return "", serpblock.Errorf(serpblock.EINVALID, "%s is not an HTML page (%s)", url, contentType)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, MaxPageSize), contentType)
	if err != nil {
		return "", serpblock.Errorf(serpblock.EINVALID, "decoding %s: %v", url, err)
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return "", serpblock.Errorf(serpblock.EUNAVAILABLE, "reading %s: %v", url, err)
	}

	return string(content), nil
}

// statusError maps a non-200 response to an application error.
func statusError(resp *http.Response, url string) error {
	switch code := resp.StatusCode; {
	case code == http.StatusOK:
		return nil
	case code == http.StatusTooManyRequests || code >= 500:
		return serpblock.Errorf(serpblock.EUNAVAILABLE, "HTTP %d for %s", code, url)
	case code == http.StatusNotFound || code == http.StatusGone:
		return serpblock.Errorf(serpblock.ENOTFOUND, "HTTP %d for %s", code, url)
	default:
		return serpblock.Errorf(serpblock.EINVALID, "HTTP %d for %s", code, url)
	}
}

// isHTML reports whether contentType names an HTML document. A missing
// header is accepted.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// Close releases resources. It is a no-op for plain HTTP.
func (f *Fetcher) Close() error {
	return nil
}
