package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/serpblock"
)

// Ensure LoggingFetcher implements serpblock.Fetcher.
var _ serpblock.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher and logs every results page it loads
// together with the number of results found on it.
type LoggingFetcher struct {
	next   serpblock.Fetcher
	parser serpblock.PageParser
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher. parser is used to count
// the results of each fetched page.
func NewLoggingFetcher(next serpblock.Fetcher, parser serpblock.PageParser, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, parser: parser, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome. A page that
// loaded without any result entries is logged as a warning: it usually
// means the engine served a consent or captcha page.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	begin := time.Now()
	html, err = f.next.Fetch(ctx, url)
	attrs := []any{
		"url", url,
		"bytes", len(html),
		"duration", time.Since(begin),
	}
	if err != nil {
		f.logger.Info("fetch", append(attrs, "err", err)...)
		return html, err
	}

	results := f.countResults(html, url)
	attrs = append(attrs, "results", results)
	if results == 0 {
		f.logger.Warn("fetch returned no results", attrs...)
		return html, nil
	}
	f.logger.Info("fetch", attrs...)
	return html, nil
}

// countResults returns the number of result entries in html, or -1 when
// the page cannot be parsed.
func (f *LoggingFetcher) countResults(html, url string) int {
	doc, err := f.parser.Parse(html, url)
	if err != nil {
		return -1
	}
	return len(doc.Results())
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
