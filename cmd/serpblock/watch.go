package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fwojciec/serpblock/rod"
	"github.com/fwojciec/serpblock/serp"
)

// Run executes the watch command. It keeps the page filtered until
// interrupted.
func (c *WatchCmd) Run(deps *Dependencies) error {
	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	page, err := deps.Browser.OpenPage(ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error opening %s: %v\n", c.URL, err)
		return err
	}
	defer page.Close()

	m := serp.NewMatcher(deps.Blocklist, page)
	m.Logger = deps.Logger
	m.Interval = c.interval(deps.Config)
	m.RefreshInterval = c.Refresh

	unbind, err := page.HandleControls(func(action rod.Action, pattern string) {
		var err error
		switch action {
		case rod.ActionBlock:
			err = m.Block(ctx, pattern)
		case rod.ActionUnblock:
			err = m.Unblock(ctx, pattern)
		case rod.ActionShow:
			m.ShowBlocked()
			return
		}
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s %s: %v\n", action, pattern, err)
			return
		}
		notifyWatchers(deps)
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	defer func() { _ = unbind() }()

	if deps.Events != nil {
		go func() {
			if err := deps.Events.SubscribeRefresh(ctx, m.RequestRefresh); err != nil {
				deps.Logger.Warn("refresh stream ended", "error", err)
			}
		}()
	}

	fmt.Fprintf(deps.Stdout, "Watching %s (Ctrl-C to stop)\n", c.URL)
	return m.Run(ctx)
}

func (c *WatchCmd) interval(cfg *Config) time.Duration {
	if c.Interval > 0 {
		return c.Interval
	}
	if cfg != nil && cfg.Interval > 0 {
		return cfg.Interval
	}
	return DefaultInterval
}
