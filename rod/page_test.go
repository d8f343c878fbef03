//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/serpblock"
	"github.com/fwojciec/serpblock/mock"
	"github.com/fwojciec/serpblock/rod"
	"github.com/fwojciec/serpblock/serp"
	gorod "github.com/go-rod/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serpHTML = `<!DOCTYPE html><html><body>
<div id="ires"><ol>
<li class="g" id="good"><h3><a href="https://good.com/a">Good</a></h3><div class="s"><div class="f"><cite>good.com</cite></div></div></li>
<li class="g" id="bad"><h3><a href="https://shop.bad.org/b">Bad</a></h3><div class="s"><div class="f"><cite>shop.bad.org</cite></div></div></li>
</ol></div>
</body></html>`

func openPage(t *testing.T) (*rod.Page, *gorod.Page) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(serpHTML))
	}))
	t.Cleanup(srv.Close)

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	page, err := manager.OpenPage(context.Background(), srv.URL+"/search?q=widgets")
	require.NoError(t, err)
	t.Cleanup(func() { _ = page.Close() })

	return page, page.Tab()
}

func staticBlocklist(patterns ...string) *mock.BlocklistService {
	return &mock.BlocklistService{
		GetBlocklistFn: func(_ context.Context, _ serpblock.BlocklistFilter) (*serpblock.BlocklistPage, error) {
			return &serpblock.BlocklistPage{Patterns: patterns, Total: len(patterns), Revision: strings.Join(patterns, ",")}, nil
		},
	}
}

func TestPage_Results(t *testing.T) {
	t.Parallel()

	page, _ := openPage(t)

	results := page.Results()
	require.Len(t, results, 2)
	href, ok := results[1].Href()
	assert.True(t, ok)
	assert.Equal(t, "https://shop.bad.org/b", href)
	assert.False(t, results[0].HasHostBlockControl())
	assert.False(t, results[0].IsVertical())
	assert.Contains(t, page.URL(), "/search?q=widgets")
}

func TestPage_MatcherTick(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	page, _ := openPage(t)
	m := serp.NewMatcher(staticBlocklist("bad.org"), page)
	require.NoError(t, m.Refresh(ctx))

	m.Tick(ctx)

	results := page.Results()
	require.Len(t, results, 2)
	assert.False(t, results[0].Has(serpblock.StateBlocked))
	assert.True(t, results[0].HasControl(serpblock.ControlBlock))
	assert.True(t, results[1].Has(serpblock.StateBlocked))
	assert.Equal(t, 1, page.CountState(serpblock.StateBlocked))
	assert.Equal(t, 2, page.CountState(serpblock.StateProcessed))

	// A second tick leaves the controls alone
	m.Tick(ctx)
	assert.True(t, results[0].HasControl(serpblock.ControlBlock))
	assert.False(t, results[0].HasControl(serpblock.ControlUnblock))
}

func TestPage_HandleControls(t *testing.T) {
	t.Parallel()

	page, tab := openPage(t)
	page.Results()[0].SetControl(serpblock.ControlBlock, "good.com")

	type click struct {
		action  rod.Action
		pattern string
	}
	clicks := make(chan click, 1)
	stop, err := page.HandleControls(func(action rod.Action, pattern string) {
		clicks <- click{action, pattern}
	})
	require.NoError(t, err)
	defer func() { _ = stop() }()

	tab.MustElement("div.blockLink a").MustClick()

	select {
	case c := <-clicks:
		assert.Equal(t, rod.ActionBlock, c.action)
		assert.Equal(t, "good.com", c.pattern)
	case <-time.After(5 * time.Second):
		t.Fatal("control click was not reported")
	}
}
