package goquery

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/serpblock"
)

var _ serpblock.SearchResult = (*Result)(nil)

// ControlClasses maps controls to the class of their wrapping div.
var ControlClasses = map[serpblock.Control]string{
	serpblock.ControlBlock:   "blockLink",
	serpblock.ControlUnblock: "unblockLink",
}

// controlLabels holds the text preceding the pattern in a control.
var controlLabels = map[serpblock.Control]string{
	serpblock.ControlBlock:   "Block ",
	serpblock.ControlUnblock: "Unblock ",
}

// Result is a single result entry of a Page.
type Result struct {
	sel *goquery.Selection
}

// Href returns the href of the primary link.
func (r *Result) Href() (string, bool) {
	return r.sel.Find(LinkSelector).First().Attr("href")
}

// HasHostBlockControl reports whether the entry has the engine's own block control.
func (r *Result) HasHostBlockControl() bool {
	return r.sel.Find(HostControlSelector).Length() > 0
}

// HostBlockControlShown reports whether the engine shows its block control
// for the entry.
func (r *Result) HostBlockControlShown() bool {
	return r.sel.Parent().HasClass(HostControlShownClass)
}

// IsVertical reports whether the entry is a book search result.
func (r *Result) IsVertical() bool {
	return r.sel.Find(VerticalSelector).Length() > 0
}

// Has reports whether the entry carries every class of state.
func (r *Result) Has(state serpblock.ResultState) bool {
	return hasState(r.sel, state)
}

// MarkProcessed tags the entry so later passes skip it.
func (r *Result) MarkProcessed() {
	r.sel.AddClass(ProcessedClass)
}

// Hide hides the entry and tags it blocked.
func (r *Result) Hide() {
	r.sel.SetAttr("style", HiddenStyle)
	r.sel.AddClass(BlockedClass)
}

// ShowBlocked shows a blocked entry highlighted.
func (r *Result) ShowBlocked() {
	r.sel.SetAttr("style", BlockedVisibleStyle)
	r.sel.RemoveClass(BlockedClass)
	r.sel.AddClass(BlockedVisibleClass)
}

// Restore clears the blocked states and resets the entry style.
func (r *Result) Restore() {
	r.sel.RemoveClass(BlockedClass, BlockedVisibleClass)
	r.sel.SetAttr("style", RestoredStyle)
}

// HasControl reports whether control c is attached.
func (r *Result) HasControl(c serpblock.Control) bool {
	class, ok := ControlClasses[c]
	if !ok {
		return false
	}
	return r.sel.Find("div."+class).Length() > 0
}

// SetControl attaches control c for pattern. An opposite control is
// replaced in place; an existing control of the same kind is kept.
func (r *Result) SetControl(c serpblock.Control, pattern string) {
	if _, ok := ControlClasses[c]; !ok || r.HasControl(c) {
		return
	}
	markup := ControlHTML(c, pattern)

	for other, otherClass := range ControlClasses {
		if other == c {
			continue
		}
		if existing := r.sel.Find("div." + otherClass); existing.Length() > 0 {
			existing.First().ReplaceWithHtml(markup)
			existing.Slice(1, existing.Length()).Remove()
			return
		}
	}

	r.insertionPoint().AppendHtml(markup)
}

// Pattern returns the pattern carried by the attached control, if any.
func (r *Result) Pattern() string {
	v, _ := r.sel.Find("a." + ControlLinkClass + "[data-pattern]").First().Attr("data-pattern")
	return v
}

// insertionPoint returns the node controls are appended to: next to the
// cite line if there is one, else next to the lower links, else the entry.
func (r *Result) insertionPoint() *goquery.Selection {
	if cite := r.sel.Find("div.f").First(); cite.Length() > 0 {
		return cite.Parent()
	}
	if lower := r.sel.Find("span.a").First(); lower.Length() > 0 {
		if p := lower.Parent().Parent(); p.Length() > 0 {
			return p
		}
	}
	if short := r.sel.Find("div.s span.vshid").First(); short.Length() > 0 {
		if p := short.Parent().Parent(); p.Length() > 0 {
			return p
		}
	}
	return r.sel
}

// ControlHTML returns the markup of control c for pattern.
func ControlHTML(c serpblock.Control, pattern string) string {
	p := escape(pattern)
	class := ControlClasses[c]
	return fmt.Sprintf(
		`<div class="%s"><a class="%s" href="javascript:;" style="%s" data-pattern="%s"><span>%s</span><span>%s</span></a></div>`,
		class, ControlLinkClass, ControlStyle, p, escape(controlLabels[c]), p,
	)
}
