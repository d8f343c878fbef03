package serp

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/serpblock"
	"golang.org/x/sync/errgroup"
)

// Format selects how a filtered page is rendered.
type Format string

// Output formats.
const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatSummary  Format = "summary"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatHTML, FormatMarkdown, FormatSummary:
		return f, nil
	case "":
		return FormatHTML, nil
	}
	return "", serpblock.Errorf(serpblock.EINVALID, "unknown format %q", s)
}

// Filter fetches search results pages, applies the blocklist to each one
// and stores the reconciled pages.
type Filter struct {
	Fetcher     serpblock.Fetcher
	Parser      serpblock.PageParser
	Blocklist   serpblock.BlocklistService
	Converter   serpblock.Converter
	Store       serpblock.PageStore
	RateLimiter serpblock.DomainLimiter
	Logger      *slog.Logger
	Format      Format
	Concurrency int
	RetryDelays []time.Duration
}

// Result holds the outcome of a filter run.
type Result struct {
	Saved   int
	Failed  int
	Results int
	Removed int
}

// ProgressEvent reports progress during a filter run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Removed   int
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting filter progress.
type ProgressFunc func(event ProgressEvent)

// filterResult holds the outcome of processing a single target.
type filterResult struct {
	position int
	url      string
	page     *serpblock.FilteredPage
	err      error
}

// FilterPages processes every target and saves the filtered pages in
// target order. Failed targets are counted and reported through progress;
// the caller decides whether to commit the store.
func (f *Filter) FilterPages(ctx context.Context, targets []string, progress ProgressFunc) (*Result, error) {
	concurrency := f.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	emit := func(e ProgressEvent) {
		if progress != nil {
			progress(e)
		}
	}

	total := len(targets)
	emit(ProgressEvent{Type: ProgressStarted, Total: total})

	resultCh := make(chan filterResult, total)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, target := range targets {
			g.Go(func() error {
				resultCh <- f.processTarget(gctx, i, target)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	var completed atomic.Int64
	results := make([]filterResult, total)
	var out Result
	for r := range resultCh {
		completed.Add(1)
		results[r.position] = r
		if r.err != nil {
			out.Failed++
			emit(ProgressEvent{Type: ProgressFailed, Completed: int(completed.Load()), Total: total, URL: r.url, Error: r.err})
			continue
		}
		emit(ProgressEvent{Type: ProgressCompleted, Completed: int(completed.Load()), Total: total, URL: r.url, Removed: r.page.Removed})
	}

	for _, r := range results {
		if r.err != nil {
			continue
		}
		if err := f.Store.Save(ctx, r.page); err != nil {
			return nil, fmt.Errorf("save %s: %w", r.url, err)
		}
		out.Saved++
		out.Results += r.page.Results
		out.Removed += r.page.Removed
	}

	emit(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	return &out, ctx.Err()
}

// processTarget fetches, filters and renders a single page.
func (f *Filter) processTarget(ctx context.Context, position int, target string) filterResult {
	result := filterResult{position: position, url: target}

	delays := f.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetry(ctx, target, f.pacedFetch(hostOf(target)), f.Logger, delays)
	if err != nil {
		result.err = err
		return result
	}

	doc, err := f.Parser.Parse(html, target)
	if err != nil {
		result.err = err
		return result
	}

	m := NewMatcher(f.Blocklist, doc)
	if f.Logger != nil {
		m.Logger = f.Logger
	}
	if err := m.Refresh(ctx); err != nil {
		result.err = fmt.Errorf("load blocklist: %w", err)
		return result
	}
	m.Tick(ctx)

	content, err := f.render(doc)
	if err != nil {
		result.err = err
		return result
	}

	result.page = &serpblock.FilteredPage{
		URL:     target,
		Content: content,
		Results: len(doc.Results()),
		Removed: doc.CountState(serpblock.StateBlocked),
	}
	return result
}

func (f *Filter) render(doc serpblock.Document) (string, error) {
	switch f.Format {
	case FormatSummary:
		return Summary(doc), nil
	case FormatMarkdown:
		if f.Converter == nil {
			return "", serpblock.Errorf(serpblock.EINVALID, "markdown output requires a converter")
		}
		html, err := doc.VisibleHTML()
		if err != nil {
			return "", err
		}
		return f.Converter.Convert(html)
	default:
		return doc.HTML()
	}
}

// pacedFetch returns a fetch that waits on the rate limiter before every
// attempt and throttles host when the engine reports it is unavailable.
func (f *Filter) pacedFetch(host string) FetchFunc {
	if f.RateLimiter == nil || host == "" {
		return f.Fetcher.Fetch
	}
	return func(ctx context.Context, url string) (string, error) {
		if err := f.RateLimiter.Wait(ctx, host); err != nil {
			return "", err
		}
		html, err := f.Fetcher.Fetch(ctx, url)
		if serpblock.ErrorCode(err) == serpblock.EUNAVAILABLE {
			f.RateLimiter.Throttle(host)
		}
		return html, err
	}
}

// Summary lists the results of a filtered page, one host per line,
// marking the ones the blocklist removed.
func Summary(page serpblock.ResultPage) string {
	results := page.Results()

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d results, %d removed\n", page.URL(), len(results), page.CountState(serpblock.StateBlocked))
	for _, r := range results {
		mark := " "
		switch {
		case r.Has(serpblock.StateBlocked):
			mark = "x"
		case r.Has(serpblock.StateBlockedVisible):
			mark = "!"
		}

		host := "(no link)"
		if href, ok := r.Href(); ok {
			if h := serpblock.ResultHost(href); h != "" {
				host = h
			}
		}
		fmt.Fprintf(&b, "  [%s] %s\n", mark, host)
	}
	return b.String()
}

// hostOf returns the host of an http(s) URL, or "" for anything else.
func hostOf(target string) string {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.Hostname()
}
