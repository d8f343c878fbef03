package rod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/serpblock"
	"github.com/fwojciec/serpblock/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultRecycleAfter is the number of fetched results pages after which
// the browser is relaunched.
const DefaultRecycleAfter = 50

// resultsGrace bounds the wait for results after a page has loaded.
const resultsGrace = 2 * time.Second

// DefaultLanguage is the browser language results pages are requested in.
// The result selectors follow the markup served for it.
const DefaultLanguage = "en-US"

// BrowserManager owns the Chrome process that loads results pages.
//
// Two kinds of tabs run on it. Fetch tabs load one page, hand back its HTML
// and close; after RecycleAfter of them the browser is relaunched to shed
// the memory Chrome keeps between pages. Watched tabs stay open until their
// Page is closed. The browser is only relaunched while no tab is open.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	closed   bool

	open     int // tabs currently open
	fetched  int // fetch tabs closed since launch
	launches int

	recycleAfter int
	headless     bool
	language     string
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithRecycleAfter sets how many results pages are fetched before the
// browser is relaunched. Zero or less disables relaunching.
func WithRecycleAfter(n int) ManagerOption {
	return func(bm *BrowserManager) {
		bm.recycleAfter = n
	}
}

// WithHeadless controls whether the browser runs without a window.
// Defaults to true.
func WithHeadless(headless bool) ManagerOption {
	return func(bm *BrowserManager) {
		bm.headless = headless
	}
}

// WithLanguage sets the browser language. Defaults to DefaultLanguage.
func WithLanguage(lang string) ManagerOption {
	return func(bm *BrowserManager) {
		bm.language = lang
	}
}

// NewBrowserManager launches Chrome. Close must be called when the manager
// is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		recycleAfter: DefaultRecycleAfter,
		headless:     true,
		language:     DefaultLanguage,
	}
	for _, opt := range opts {
		opt(bm)
	}

	if err := bm.launch(); err != nil {
		return nil, err
	}
	return bm, nil
}

// FetchHTML loads url in a fresh tab and returns the rendered document once
// the results are in place. A page without results is returned as loaded.
func (bm *BrowserManager) FetchHTML(ctx context.Context, url string) (string, error) {
	tab, done, err := bm.openTab(false)
	if err != nil {
		return "", err
	}
	defer done()

	tab = tab.Context(ctx)
	if err := tab.Navigate(url); err != nil {
		return "", err
	}
	if err := tab.WaitLoad(); err != nil {
		return "", err
	}

	// Engines may insert results from script after the load event.
	if err := tab.Timeout(resultsGrace).WaitElementsMoreThan(goquery.ResultSelector, 0); err != nil && ctx.Err() != nil {
		return "", ctx.Err()
	}

	return tab.HTML()
}

// OpenPage opens url in a watched tab and waits for it to load. The tab
// keeps the browser from being relaunched until the Page is closed.
func (bm *BrowserManager) OpenPage(ctx context.Context, url string) (*Page, error) {
	tab, done, err := bm.openTab(true)
	if err != nil {
		return nil, err
	}

	if err := tab.Context(ctx).Navigate(url); err != nil {
		done()
		return nil, err
	}
	if err := tab.Context(ctx).WaitLoad(); err != nil {
		done()
		return nil, err
	}
	return &Page{page: tab, release: done}, nil
}

// openTab opens a blank tab, relaunching the browser first if it is due
// and idle. done closes the tab; fetch tabs count toward the next relaunch.
func (bm *BrowserManager) openTab(watched bool) (tab *rod.Page, done func(), err error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, nil, serpblock.Errorf(serpblock.EINVALID, "browser is closed")
	}
	if bm.recycleAfter > 0 && bm.fetched >= bm.recycleAfter && bm.open == 0 {
		bm.recycle()
	}

	tab, err = bm.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, nil, fmt.Errorf("opening tab: %w", err)
	}
	bm.open++
	launch := bm.launches

	var once sync.Once
	done = func() {
		once.Do(func() {
			_ = tab.Close()

			bm.mu.Lock()
			defer bm.mu.Unlock()
			bm.open--
			if !watched && launch == bm.launches {
				bm.fetched++
			}
		})
	}
	return tab, done, nil
}

// Launches returns how many times the browser has been started.
func (bm *BrowserManager) Launches() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.launches
}

// Close shuts the browser down. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true
	return bm.shutdown()
}

// launch starts Chrome and connects to it. Must be called with mu held or
// before the manager is shared.
func (bm *BrowserManager) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("lang", bm.language).
		Leakless(true).
		Headless(bm.headless)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	bm.launcher = l
	bm.fetched = 0
	bm.launches++
	return nil
}

// shutdown closes the browser and kills its process. Must be called with
// mu held.
func (bm *BrowserManager) shutdown() error {
	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}

// recycle replaces the browser with a fresh one. The old browser is kept if
// the new one fails to start. Must be called with mu held.
func (bm *BrowserManager) recycle() {
	old, oldLauncher := bm.browser, bm.launcher
	if err := bm.launch(); err != nil {
		bm.browser, bm.launcher = old, oldLauncher
		bm.fetched = 0
		return
	}
	_ = old.Close()
	oldLauncher.Kill()
}

// LauncherPID returns the process ID of the running browser, or 0.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}
