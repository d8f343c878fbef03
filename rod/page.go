package rod

import (
	"strconv"
	"strings"

	"github.com/fwojciec/serpblock"
	"github.com/fwojciec/serpblock/goquery"
	"github.com/go-rod/rod"
	"github.com/ysmood/gson"
)

// Compile-time interface verification.
var (
	_ serpblock.ResultPage   = (*Page)(nil)
	_ serpblock.SearchResult = (*Result)(nil)
)

// Page is a live search results page in a browser tab. It writes the same
// markup as goquery.Page, but into the running document, so the reader sees
// results disappear as the matcher works.
//
// Lookups that fail on the browser side yield zero values.
type Page struct {
	page    *rod.Page
	release func()
}

// NewPage wraps an open browser tab.
func NewPage(page *rod.Page) *Page {
	return &Page{page: page}
}

// Tab returns the browser tab of the page.
func (p *Page) Tab() *rod.Page {
	return p.page
}

// Close closes the tab. Pages opened by a BrowserManager hand their tab
// back to it.
func (p *Page) Close() error {
	if p.release != nil {
		p.release()
		return nil
	}
	return p.page.Close()
}

// URL returns the address currently loaded in the tab.
func (p *Page) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Results returns the result entries in document order.
func (p *Page) Results() []serpblock.SearchResult {
	els, err := p.page.Elements(goquery.ResultSelector)
	if err != nil {
		return nil
	}
	results := make([]serpblock.SearchResult, 0, len(els))
	for _, el := range els {
		results = append(results, &Result{el: el})
	}
	return results
}

// CountState returns how many results carry state.
func (p *Page) CountState(state serpblock.ResultState) int {
	obj, err := p.page.Eval(`(sel, classes) => classes.length === 0 ? 0 :
		Array.from(document.querySelectorAll(sel)).filter(e => classes.every(c => e.classList.contains(c))).length`,
		goquery.ResultSelector, stateClasses(state))
	if err != nil {
		return 0
	}
	return obj.Value.Int()
}

// SetNotification shows how many results were removed, or hides the
// notification when n is zero.
func (p *Page) SetNotification(n int) {
	markup := ""
	if n > 0 {
		markup = goquery.NotificationHTML(n)
	}
	_, _ = p.page.Eval(`(id, hidden, markup, block) => {
		const existing = document.getElementById(id);
		if (!markup) {
			if (existing) existing.style.cssText = hidden;
			return;
		}
		const tpl = document.createElement('template');
		tpl.innerHTML = markup;
		const node = tpl.content.firstElementChild;
		if (existing) {
			existing.replaceWith(node);
			return;
		}
		const results = document.querySelector(block);
		if (results) {
			results.after(node);
			return;
		}
		document.body.appendChild(node);
	}`, goquery.NotificationID, goquery.HiddenStyle, markup, goquery.ResultsBlockSelector)
}

// Action is a control the reader clicked on the live page.
type Action string

// Actions reported by HandleControls.
const (
	ActionBlock   Action = "block"
	ActionUnblock Action = "unblock"
	ActionShow    Action = "show"
)

const bindingName = "serpblockControl"

const controlsListener = `(name, blockClass, unblockClass, showClass) => {
	if (window.__serpblockControls) return;
	window.__serpblockControls = true;
	document.addEventListener('click', (e) => {
		const target = e.target instanceof Element ? e.target : null;
		if (!target || typeof window[name] !== 'function') return;
		if (target.closest('a.' + showClass)) {
			window[name]({action: 'show', pattern: ''});
			return;
		}
		const link = target.closest('a[data-pattern]');
		if (!link || !link.parentElement) return;
		const box = link.parentElement.classList;
		const action = box.contains(blockClass) ? 'block' : box.contains(unblockClass) ? 'unblock' : '';
		if (action) window[name]({action: action, pattern: link.getAttribute('data-pattern')});
	}, true);
}`

// HandleControls reports clicks on block, unblock and show controls to fn.
// fn runs on its own goroutine. The listener survives navigation within
// the tab. Call stop to detach it.
func (p *Page) HandleControls(fn func(action Action, pattern string)) (stop func() error, err error) {
	unbind, err := p.page.Expose(bindingName, func(j gson.JSON) (interface{}, error) {
		go fn(Action(j.Get("action").Str()), j.Get("pattern").Str())
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	args := []string{
		strconv.Quote(bindingName),
		strconv.Quote(goquery.ControlClasses[serpblock.ControlBlock]),
		strconv.Quote(goquery.ControlClasses[serpblock.ControlUnblock]),
		strconv.Quote(goquery.ShowBlockedClass),
	}
	script := "(" + controlsListener + ")(" + strings.Join(args, ", ") + ")"
	remove, err := p.page.EvalOnNewDocument(script)
	if err != nil {
		_ = unbind()
		return nil, err
	}
	if _, err := p.page.Eval("() => " + script); err != nil {
		_ = remove()
		_ = unbind()
		return nil, err
	}

	return func() error {
		if err := remove(); err != nil {
			return err
		}
		return unbind()
	}, nil
}

// Result is a single result entry of a live Page.
type Result struct {
	el *rod.Element
}

func (r *Result) eval(js string, params ...interface{}) gson.JSON {
	obj, err := r.el.Eval(js, params...)
	if err != nil {
		return gson.New(nil)
	}
	return obj.Value
}

// Href returns the href of the primary link.
func (r *Result) Href() (string, bool) {
	v := r.eval(`(sel) => {
		const a = this.querySelector(sel);
		return a && a.hasAttribute('href') ? {ok: true, href: a.getAttribute('href')} : {ok: false, href: ''};
	}`, goquery.LinkSelector)
	return v.Get("href").Str(), v.Get("ok").Bool()
}

// HasHostBlockControl reports whether the engine renders its own block control.
func (r *Result) HasHostBlockControl() bool {
	return r.eval(`(sel) => this.querySelector(sel) !== null`, goquery.HostControlSelector).Bool()
}

// HostBlockControlShown reports whether the engine's own control is shown.
func (r *Result) HostBlockControlShown() bool {
	return r.eval(`(cls) => !!this.parentElement && this.parentElement.classList.contains(cls)`,
		goquery.HostControlShownClass).Bool()
}

// IsVertical reports whether the entry is a book search result.
func (r *Result) IsVertical() bool {
	return r.eval(`(sel) => this.querySelector(sel) !== null`, goquery.VerticalSelector).Bool()
}

// Has reports whether the entry carries every class of state.
func (r *Result) Has(state serpblock.ResultState) bool {
	return r.eval(`(classes) => classes.length > 0 && classes.every(c => this.classList.contains(c))`,
		stateClasses(state)).Bool()
}

// MarkProcessed tags the entry so later passes skip it.
func (r *Result) MarkProcessed() {
	r.eval(`(cls) => { this.classList.add(cls); }`, goquery.ProcessedClass)
}

// Hide hides the entry and tags it blocked.
func (r *Result) Hide() {
	r.eval(`(style, cls) => {
		this.style.cssText = style;
		this.classList.add(cls);
	}`, goquery.HiddenStyle, goquery.BlockedClass)
}

// ShowBlocked shows a blocked entry highlighted.
func (r *Result) ShowBlocked() {
	r.eval(`(style, blocked, visible) => {
		this.style.cssText = style;
		this.classList.remove(blocked);
		this.classList.add(visible);
	}`, goquery.BlockedVisibleStyle, goquery.BlockedClass, goquery.BlockedVisibleClass)
}

// Restore clears the blocked states and resets the entry style.
func (r *Result) Restore() {
	r.eval(`(style, blocked, visible) => {
		this.classList.remove(blocked, visible);
		this.style.cssText = style;
	}`, goquery.RestoredStyle, goquery.BlockedClass, goquery.BlockedVisibleClass)
}

// HasControl reports whether control c is attached.
func (r *Result) HasControl(c serpblock.Control) bool {
	class, ok := goquery.ControlClasses[c]
	if !ok {
		return false
	}
	return r.eval(`(cls) => this.querySelector('div.' + cls) !== null`, class).Bool()
}

// SetControl attaches control c for pattern at the same insertion point
// goquery.Result uses.
func (r *Result) SetControl(c serpblock.Control, pattern string) {
	class, ok := goquery.ControlClasses[c]
	if !ok {
		return
	}
	other := goquery.ControlClasses[opposite(c)]
	r.eval(`(cls, other, markup) => {
		if (this.querySelector('div.' + cls)) return;
		const tpl = document.createElement('template');
		tpl.innerHTML = markup;
		const node = tpl.content.firstElementChild;
		const existing = this.querySelectorAll('div.' + other);
		if (existing.length > 0) {
			existing[0].replaceWith(node);
			for (let i = 1; i < existing.length; i++) existing[i].remove();
			return;
		}
		const grandparent = (el) => el && el.parentElement ? el.parentElement.parentElement : null;
		const cite = this.querySelector('div.f');
		let point = cite ? cite.parentElement : null;
		point = point || grandparent(this.querySelector('span.a'));
		point = point || grandparent(this.querySelector('div.s span.vshid'));
		(point || this).appendChild(node);
	}`, class, other, goquery.ControlHTML(c, pattern))
}

func opposite(c serpblock.Control) serpblock.Control {
	if c == serpblock.ControlBlock {
		return serpblock.ControlUnblock
	}
	return serpblock.ControlBlock
}

// stateClasses lists the classes a result must carry to have state.
func stateClasses(state serpblock.ResultState) []string {
	classes := []string{}
	if state&serpblock.StateProcessed != 0 {
		classes = append(classes, goquery.ProcessedClass)
	}
	if state&serpblock.StateBlocked != 0 {
		classes = append(classes, goquery.BlockedClass)
	}
	if state&serpblock.StateBlockedVisible != 0 {
		classes = append(classes, goquery.BlockedVisibleClass)
	}
	return classes
}
