package serpblock

import "context"

// ResultState flags the processing state of a search result.
type ResultState int

// Result states. A result can be processed and blocked at the same time.
const (
	// StateProcessed marks a result the matcher has finished with.
	StateProcessed ResultState = 1 << iota

	// StateBlocked marks a result hidden because its domain is blocked.
	StateBlocked

	// StateBlockedVisible marks a blocked result that is shown on request,
	// highlighted instead of hidden.
	StateBlockedVisible
)

// Control identifies the affordance attached to a search result.
type Control int

// Controls offered on a search result.
const (
	ControlNone Control = iota
	ControlBlock
	ControlUnblock
)

// SearchResult is one organic listing on a search results page.
// Implementations must tolerate missing elements: lookups that find nothing
// return zero values instead of failing.
type SearchResult interface {
	// Href returns the raw target of the result's primary link.
	// The bool result is false if the result has no primary link.
	Href() (string, bool)

	// HasHostBlockControl reports whether the search engine already renders
	// its own block control inside this result.
	HasHostBlockControl() bool

	// HostBlockControlShown reports whether the search engine's own block
	// control is currently shown for this result.
	HostBlockControlShown() bool

	// IsVertical reports whether the result belongs to a non-web vertical
	// (e.g. book search) that is never filtered.
	IsVertical() bool

	// Has reports whether the result carries the given state.
	Has(state ResultState) bool

	// MarkProcessed tags the result as processed.
	MarkProcessed()

	// Hide suppresses the result and tags it blocked.
	Hide()

	// ShowBlocked reveals a blocked result with a distinguishing background
	// and tags it blocked-but-visible.
	ShowBlocked()

	// Restore clears both blocked tags and renders the result normally.
	Restore()

	// HasControl reports whether the given control is attached.
	HasControl(c Control) bool

	// SetControl attaches a control for pattern, replacing the opposite
	// control if one is present. A result never carries both.
	SetControl(c Control, pattern string)
}

// ResultPage is a search results page the matcher reconciles against the blocklist.
type ResultPage interface {
	// URL returns the address of the page. May be empty.
	URL() string

	// Results returns the result entries currently on the page.
	Results() []SearchResult

	// CountState returns how many results carry the given state.
	CountState(state ResultState) int

	// SetNotification shows a notice that n results were removed, or hides
	// the notice when n is zero.
	SetNotification(n int)
}

// Document is a ResultPage that can be serialized back to HTML.
type Document interface {
	ResultPage

	// HTML renders the current state of the page.
	HTML() (string, error)

	// VisibleHTML renders the page without the results it hides.
	VisibleHTML() (string, error)
}

// PageParser parses fetched HTML into a Document.
type PageParser interface {
	Parse(html, pageURL string) (Document, error)
}

// FilteredPage is a search results page after the blocklist was applied.
type FilteredPage struct {
	URL     string
	Content string

	// Results is the number of result entries found on the page.
	Results int

	// Removed is the number of entries hidden by the blocklist.
	Removed int
}

// PageStore stores filtered pages with atomic update semantics.
// Pages are staged by Save and become visible together on Commit.
type PageStore interface {
	Save(ctx context.Context, page *FilteredPage) error
	Commit() error
	Abort() error
}
