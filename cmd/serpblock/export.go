package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/serpblock"
	"github.com/fwojciec/serpblock/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	page, err := deps.Blocklist.GetBlocklist(deps.Ctx, serpblock.BlocklistFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpblock.ErrorMessage(err))
		return err
	}

	var b strings.Builder
	for _, p := range page.Patterns {
		b.WriteString(p)
		b.WriteByte('\n')
	}

	if c.Output == "" {
		_, err := fmt.Fprint(deps.Stdout, b.String())
		return err
	}

	if err := fs.WriteFile(c.Output, []byte(b.String())); err != nil {
		fmt.Fprintf(deps.Stderr, "error writing %s: %v\n", c.Output, err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Exported %d patterns to %s\n", len(page.Patterns), c.Output)
	return nil
}
