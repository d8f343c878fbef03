// Package serp reconciles search results pages with the blocklist.
package serp

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/serpblock"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// DefaultInterval is the time between two reconciliation passes.
const DefaultInterval = 500 * time.Millisecond

// Matcher hides the results of a page whose domain is on the blocklist and
// attaches block and unblock controls to the others.
//
// A Matcher is bound to one page for its lifetime. Ticks never overlap and
// access to the page is serialized, so the page may be reconciled while
// the blocklist is refreshed concurrently. A zero Matcher with Blocklist and
// Page set is usable; NewMatcher also sets the defaults.
type Matcher struct {
	Blocklist serpblock.BlocklistService
	Page      serpblock.ResultPage
	Logger    *slog.Logger

	// Interval between reconciliation passes in Run.
	Interval time.Duration

	// RefreshInterval makes Run poll the blocklist for changes made
	// elsewhere. Zero disables polling.
	RefreshInterval time.Duration

	pageMu sync.Mutex

	mu         sync.Mutex
	patterns   []string
	revision   string
	latest     string
	generation uint64

	dirty     atomic.Bool
	running   atomic.Bool
	group     singleflight.Group
	refreshCh chan struct{}
	initOnce  sync.Once
	noResults rate.Sometimes
}

// NewMatcher creates a Matcher for page.
func NewMatcher(blocklist serpblock.BlocklistService, page serpblock.ResultPage) *Matcher {
	return &Matcher{
		Blocklist: blocklist,
		Page:      page,
		Logger:    slog.New(slog.DiscardHandler),
		Interval:  DefaultInterval,
		refreshCh: make(chan struct{}, 1),
		noResults: rate.Sometimes{Interval: 10 * time.Second},
	}
}

func (m *Matcher) logger() *slog.Logger {
	if m.Logger == nil {
		return discardLogger
	}
	return m.Logger
}

// refreshes returns the channel RequestRefresh signals Run on.
func (m *Matcher) refreshes() chan struct{} {
	m.initOnce.Do(func() {
		if m.refreshCh == nil {
			m.refreshCh = make(chan struct{}, 1)
		}
	})
	return m.refreshCh
}

var discardLogger = slog.New(slog.DiscardHandler)

// Patterns returns the current blocklist snapshot.
func (m *Matcher) Patterns() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.patterns)
}

// Refresh reloads the blocklist snapshot. Concurrent calls share one
// request. Only the answer to the most recent request is applied, and an
// answer arriving after ctx is done is dropped.
func (m *Matcher) Refresh(ctx context.Context) error {
	m.mu.Lock()
	key := strconv.FormatUint(m.generation, 10)
	m.mu.Unlock()

	_, err, _ := m.group.Do(key, func() (any, error) {
		return nil, m.fetch(ctx)
	})
	return err
}

func (m *Matcher) fetch(ctx context.Context) error {
	id := uuid.NewString()
	m.mu.Lock()
	m.latest = id
	m.mu.Unlock()

	page, err := m.Blocklist.GetBlocklist(ctx, serpblock.BlocklistFilter{})
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest != id {
		m.logger().Debug("dropping stale blocklist", "id", id)
		return nil
	}
	if page.Revision == m.revision && m.revision != "" {
		return nil
	}
	m.patterns = slices.Clone(page.Patterns)
	m.revision = page.Revision
	m.dirty.Store(true)
	return nil
}

// RequestRefresh asks Run to reload the blocklist and reconcile the whole
// page. It never blocks.
func (m *Matcher) RequestRefresh() {
	m.invalidate()
	select {
	case m.refreshes() <- struct{}{}:
	default:
	}
}

// invalidate starts a new refresh generation and forces a full pass.
func (m *Matcher) invalidate() {
	m.nextGeneration()
	m.dirty.Store(true)
}

// nextGeneration makes the next Refresh issue a new request instead of
// joining one already in flight.
func (m *Matcher) nextGeneration() {
	m.mu.Lock()
	m.generation++
	m.mu.Unlock()
}

// Tick runs one reconciliation pass. It reports false if it was skipped
// because another pass is still running.
func (m *Matcher) Tick(ctx context.Context) bool {
	if !m.running.CompareAndSwap(false, true) {
		return false
	}
	defer m.running.Store(false)

	if serpblock.PersonalizationDisabled(m.Page.URL()) {
		return true
	}

	m.pageMu.Lock()
	defer m.pageMu.Unlock()

	patterns := m.Patterns()
	dirty := m.dirty.Swap(false)

	if len(patterns) > 0 || dirty {
		m.hideResults(patterns)
	}

	results := m.Page.Results()
	if len(results) == 0 {
		m.noResults.Do(func() {
			m.logger().DebugContext(ctx, "no search results on page", "url", m.Page.URL())
		})
	}

	if dirty || m.Page.CountState(serpblock.StateProcessed) < len(results) {
		for _, r := range results {
			alterResult(r, patterns)
		}
		m.Page.SetNotification(m.Page.CountState(serpblock.StateBlocked))
	}
	return true
}

// hideResults hides newly matching results and restores results that no
// longer match.
func (m *Matcher) hideResults(patterns []string) {
	for _, r := range m.Page.Results() {
		href, _ := r.Href()
		pattern := serpblock.FindBlockPattern(patterns, serpblock.ResultHost(href))
		blocked := r.Has(serpblock.StateBlocked) || r.Has(serpblock.StateBlockedVisible)

		switch {
		case pattern != "" && !blocked:
			if r.HostBlockControlShown() {
				r.ShowBlocked()
			} else {
				r.Hide()
			}
		case pattern == "" && blocked:
			r.Restore()
		}
	}
}

// alterResult attaches the control a result should carry and marks it
// processed once it has one.
func alterResult(r serpblock.SearchResult, patterns []string) {
	href, ok := r.Href()
	if !ok {
		return
	}

	host := serpblock.ResultHost(href)
	if host == "" || r.HasHostBlockControl() || r.IsVertical() {
		r.MarkProcessed()
		return
	}

	visible := r.Has(serpblock.StateBlockedVisible)
	switch {
	case !visible && !r.HasControl(serpblock.ControlBlock):
		r.SetControl(serpblock.ControlBlock, host)
	case visible && !r.HasControl(serpblock.ControlUnblock):
		// Unblock the pattern that caused the block, which may be shorter
		// than the host.
		pattern := serpblock.FindBlockPattern(patterns, host)
		if pattern == "" {
			return
		}
		r.SetControl(serpblock.ControlUnblock, pattern)
		return
	}
	r.MarkProcessed()
}

// Block adds pattern to the blocklist and reloads it.
func (m *Matcher) Block(ctx context.Context, pattern string) error {
	if err := m.Blocklist.AddPattern(ctx, pattern); err != nil {
		return err
	}
	m.invalidate()
	return m.Refresh(ctx)
}

// Unblock removes pattern from the blocklist, restores the results shown on
// request that it covered and reloads the blocklist.
func (m *Matcher) Unblock(ctx context.Context, pattern string) error {
	if err := m.Blocklist.DeletePattern(ctx, pattern); err != nil {
		return err
	}

	m.pageMu.Lock()
	for _, r := range m.Page.Results() {
		if !r.Has(serpblock.StateBlockedVisible) {
			continue
		}
		href, _ := r.Href()
		if slices.Contains(serpblock.SubDomains(serpblock.ResultHost(href)), pattern) {
			r.Restore()
		}
	}
	m.pageMu.Unlock()

	m.invalidate()
	return m.Refresh(ctx)
}

// ShowBlocked reveals every hidden result, highlighted as blocked.
func (m *Matcher) ShowBlocked() {
	m.pageMu.Lock()
	defer m.pageMu.Unlock()

	for _, r := range m.Page.Results() {
		if r.Has(serpblock.StateBlocked) {
			r.ShowBlocked()
		}
	}
	m.dirty.Store(true)
}

// Run reconciles the page every Interval until ctx is done. The blocklist
// is loaded first and reloaded on RequestRefresh and, if set, every
// RefreshInterval. Refreshes run beside the reconciliation loop.
func (m *Matcher) Run(ctx context.Context) error {
	interval := m.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	refresh := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Refresh(ctx); err != nil {
				m.logger().WarnContext(ctx, "blocklist refresh failed", "error", err)
			}
		}()
	}
	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var poll <-chan time.Time
	if m.RefreshInterval > 0 {
		t := time.NewTicker(m.RefreshInterval)
		defer t.Stop()
		poll = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.refreshes():
			refresh()
		case <-poll:
			m.nextGeneration()
			refresh()
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}
