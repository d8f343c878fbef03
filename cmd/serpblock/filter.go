package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fwojciec/serpblock"
	"github.com/fwojciec/serpblock/fs"
	"github.com/fwojciec/serpblock/serp"
)

// Run executes the filter command.
func (c *FilterCmd) Run(deps *Dependencies) error {
	format, err := serp.ParseFormat(c.Format)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpblock.ErrorMessage(err))
		return err
	}
	if c.Output != "" && c.OutDir != "" {
		fmt.Fprintln(deps.Stderr, "error: use either --output or --out-dir")
		return serpblock.Errorf(serpblock.EINVALID, "use either --output or --out-dir")
	}

	var store serpblock.PageStore
	switch {
	case c.OutDir != "":
		dir := filepath.Clean(c.OutDir)
		store = fs.NewFileStore(filepath.Dir(dir), filepath.Base(dir), extension(format))
	case c.Output != "":
		store = fs.NewWriter(c.Output)
	default:
		store = &streamStore{w: deps.Stdout}
	}

	deps.Filter.Store = store
	deps.Filter.Format = format
	if c.Concurrency > 0 {
		deps.Filter.Concurrency = c.Concurrency
	}

	progress := func(event serp.ProgressEvent) {
		if event.Type == serp.ProgressFailed {
			fmt.Fprintf(deps.Stderr, "skip %s: %v\n", event.URL, event.Error)
		}
	}

	result, err := deps.Filter.FilterPages(deps.Ctx, c.Targets, progress)
	if err != nil {
		_ = store.Abort()
		fmt.Fprintf(deps.Stderr, "error filtering: %v\n", err)
		return err
	}

	if result.Saved == 0 {
		_ = store.Abort()
		fmt.Fprintln(deps.Stderr, "error: no pages could be filtered")
		return serpblock.Errorf(serpblock.EUNAVAILABLE, "no pages could be filtered")
	}

	if err := store.Commit(); err != nil {
		fmt.Fprintf(deps.Stderr, "error committing: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stderr, "Filtered %d %s: removed %d of %d results\n",
		result.Saved, plural(result.Saved, "page", "pages"), result.Removed, result.Results)
	return nil
}

func extension(f serp.Format) string {
	switch f {
	case serp.FormatMarkdown:
		return ".md"
	case serp.FormatSummary:
		return ".txt"
	}
	return ".html"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// streamStore writes pages to w on Commit.
type streamStore struct {
	w     io.Writer
	pages []string
}

func (s *streamStore) Save(_ context.Context, page *serpblock.FilteredPage) error {
	s.pages = append(s.pages, page.Content)
	return nil
}

func (s *streamStore) Commit() error {
	out := strings.Join(s.pages, "\n")
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err := fmt.Fprint(s.w, out)
	return err
}

func (s *streamStore) Abort() error {
	s.pages = nil
	return nil
}
