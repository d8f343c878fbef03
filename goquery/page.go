// Package goquery implements the search results page DOM on top of goquery.
// Lookups never fail: markup the page does not carry simply yields no
// results, no controls or no insertion point.
package goquery

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/serpblock"
)

// Selectors and class names of the search results markup.
const (
	ResultSelector        = "li.g, div.g"
	LinkSelector          = "h3 > a"
	HostControlSelector   = ".kob"
	HostControlShownClass = "kobb"
	VerticalSelector      = "td.bkst"
	ResultsBlockSelector  = "div#ires"
	NotificationID        = "blocklistNotification"
)

// Classes the matcher tags results with.
const (
	ProcessedClass      = "pb"
	BlockedClass        = "blocked"
	BlockedVisibleClass = "blockedVisible"
	ControlLinkClass    = "fl"
	ShowBlockedClass    = "showBlocked"
)

// Inline styles written on results and the notification.
const (
	HiddenStyle         = "display:none;"
	BlockedVisibleStyle = "display:block; background-color:#FFD2D2;"
	RestoredStyle       = "background-color:inherit;"
	NotificationStyle   = "font-style:italic; margin-top:1em; margin-bottom:1em;"
	ControlStyle        = "white-space:nowrap;"
)

// Compile-time interface verification.
var (
	_ serpblock.Document   = (*Page)(nil)
	_ serpblock.PageParser = (*Parser)(nil)
)

// Page is a parsed search results page.
type Page struct {
	doc *goquery.Document
	url string
}

// NewPage parses the HTML of the page found at pageURL.
func NewPage(content, pageURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, serpblock.Errorf(serpblock.EINVALID, "failed to parse HTML: %v", err)
	}
	return &Page{doc: doc, url: pageURL}, nil
}

// URL returns the address the page was loaded from.
func (p *Page) URL() string {
	return p.url
}

// Results returns the result entries in document order.
func (p *Page) Results() []serpblock.SearchResult {
	var results []serpblock.SearchResult
	p.doc.Find(ResultSelector).Each(func(_ int, sel *goquery.Selection) {
		results = append(results, &Result{sel: sel})
	})
	return results
}

// CountState returns how many results carry state.
func (p *Page) CountState(state serpblock.ResultState) int {
	n := 0
	p.doc.Find(ResultSelector).Each(func(_ int, sel *goquery.Selection) {
		if hasState(sel, state) {
			n++
		}
	})
	return n
}

// SetNotification shows how many results were removed, or hides the
// notification when n is zero.
func (p *Page) SetNotification(n int) {
	existing := p.doc.Find("div#" + NotificationID)

	if n <= 0 {
		if existing.Length() > 0 {
			existing.SetAttr("style", HiddenStyle)
		}
		return
	}

	markup := NotificationHTML(n)
	if existing.Length() > 0 {
		existing.First().ReplaceWithHtml(markup)
		return
	}

	if block := p.doc.Find(ResultsBlockSelector).First(); block.Length() > 0 {
		block.AfterHtml(markup)
		return
	}
	p.doc.Find("body").First().AppendHtml(markup)
}

// HTML renders the page in its current state.
func (p *Page) HTML() (string, error) {
	return p.doc.Html()
}

// VisibleHTML renders a copy of the page with hidden results, block
// controls and the notification removed. The page itself is left untouched.
func (p *Page) VisibleHTML() (string, error) {
	clone := p.doc.Clone()
	clone.Find(blockedSelector()).Remove()
	clone.Find("div." + ControlClasses[serpblock.ControlBlock] + ", div." + ControlClasses[serpblock.ControlUnblock]).Remove()
	clone.Find("div#" + NotificationID).Remove()
	return clone.Html()
}

// blockedSelector matches fully hidden results.
func blockedSelector() string {
	var parts []string
	for _, s := range strings.Split(ResultSelector, ",") {
		parts = append(parts, strings.TrimSpace(s)+"."+BlockedClass)
	}
	return strings.Join(parts, ", ")
}

// NotificationHTML returns the markup of the removed-results notice.
func NotificationHTML(n int) string {
	noun := "results"
	if n == 1 {
		noun = "result"
	}
	return fmt.Sprintf(
		`<div id="%s" style="%s">%d %s removed by your blocklist (<a href="javascript:;" class="%s">show them</a>).</div>`,
		NotificationID, NotificationStyle, n, noun, ShowBlockedClass,
	)
}

// Parser implements serpblock.PageParser.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses HTML fetched from pageURL.
func (*Parser) Parse(content, pageURL string) (serpblock.Document, error) {
	page, err := NewPage(content, pageURL)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// hasState reports whether sel carries every flag in state.
func hasState(sel *goquery.Selection, state serpblock.ResultState) bool {
	if state&serpblock.StateProcessed != 0 && !sel.HasClass(ProcessedClass) {
		return false
	}
	if state&serpblock.StateBlocked != 0 && !sel.HasClass(BlockedClass) {
		return false
	}
	if state&serpblock.StateBlockedVisible != 0 && !sel.HasClass(BlockedVisibleClass) {
		return false
	}
	return state != 0
}

// escape is used for both text and attribute values.
func escape(s string) string {
	return html.EscapeString(s)
}
