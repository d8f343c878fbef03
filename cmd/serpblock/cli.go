package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/serpblock"
	"github.com/fwojciec/serpblock/rod"
	"github.com/fwojciec/serpblock/serp"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Config    *Config
	Blocklist serpblock.BlocklistService
	Filter    *serp.Filter
	Browser   *rod.BrowserManager

	// Set when the blocklist lives in a running server.
	Refresher Refresher
	Events    serpblock.RefreshSubscriber
}

// Refresher signals page matchers that the blocklist changed.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// notifyWatchers sends a refresh signal when the blocklist is served by
// another process. A failed signal is reported but does not fail the command.
func notifyWatchers(deps *Dependencies) {
	if deps.Refresher == nil {
		return
	}
	if err := deps.Refresher.Refresh(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "warning: watchers not refreshed: %s\n", serpblock.ErrorMessage(err))
	}
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `help:"Blocklist database path" env:"SERPBLOCK_DB"`
	Server  string `help:"Use the blocklist of a running 'serpblock serve' at this URL" env:"SERPBLOCK_SERVER"`
	Config  string `help:"Config file (default ~/.serpblock/config.yaml)" env:"SERPBLOCK_CONFIG"`
	Verbose bool   `short:"v" help:"Log operations to stderr"`

	List   ListCmd   `cmd:"" help:"List blocked domains"`
	Add    AddCmd    `cmd:"" help:"Block a domain"`
	Delete DeleteCmd `cmd:"" help:"Unblock a domain"`
	Edit   EditCmd   `cmd:"" help:"Change the sub-domain part of a blocked domain"`
	Import ImportCmd `cmd:"" help:"Block every domain listed in a file (one per line)"`
	Export ExportCmd `cmd:"" help:"Print the blocklist, one domain per line"`
	Serve  ServeCmd  `cmd:"" help:"Serve the blocklist to other processes over HTTP"`
	Filter FilterCmd `cmd:"" help:"Remove blocked results from search results pages"`
	Watch  WatchCmd  `cmd:"" help:"Open a results page in a browser and keep it filtered"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Start int `help:"Index of the first pattern to show"`
	Num   int `short:"n" help:"Number of patterns to show (0 for all)"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	Pattern string `arg:"" help:"Domain or URL to block"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Pattern string `arg:"" help:"Blocked domain to remove"`
}

// EditCmd is the "edit" subcommand.
type EditCmd struct {
	Pattern   string `arg:"" help:"Blocked domain to change"`
	Subdomain string `arg:"" help:"New sub-domain part (empty to block the whole domain)"`
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	File string `arg:"" optional:"" help:"File with one domain per line (default stdin)"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Output string `short:"o" help:"Write to this file instead of stdout"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `help:"Listen address (default 127.0.0.1:7777)"`
}

// FilterCmd is the "filter" subcommand.
type FilterCmd struct {
	Targets     []string      `arg:"" help:"Search results URLs or saved HTML files"`
	Static      bool          `help:"Fetch with plain HTTP instead of a headless browser"`
	Format      string        `short:"f" default:"html" enum:"html,markdown,summary" help:"Output format (html, markdown, summary)"`
	Output      string        `short:"o" help:"Write all pages to this file"`
	OutDir      string        `name:"out-dir" help:"Write one file per page below this directory"`
	Concurrency int           `short:"c" default:"3" help:"Concurrent fetch limit"`
	Timeout     time.Duration `default:"30s" help:"Time allowed for fetching one page"`
}

// WatchCmd is the "watch" subcommand.
type WatchCmd struct {
	URL      string        `arg:"" help:"Search results URL to open"`
	Interval time.Duration `help:"How often the page is re-scanned (default 500ms)"`
	Refresh  time.Duration `default:"2s" help:"How often the blocklist is re-read"`
}
