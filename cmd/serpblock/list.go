package main

import (
	"fmt"

	"github.com/fwojciec/serpblock"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	page, err := deps.Blocklist.GetBlocklist(deps.Ctx, serpblock.BlocklistFilter{Start: c.Start, Num: c.Num})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpblock.ErrorMessage(err))
		return err
	}

	if page.Total == 0 {
		fmt.Fprintln(deps.Stdout, "Your blocklist is empty. Use 'serpblock add' to block a domain.")
		return nil
	}

	if len(page.Patterns) == 0 {
		fmt.Fprintf(deps.Stdout, "No patterns from %d (%d in total)\n", page.Start+1, page.Total)
		return nil
	}

	for _, p := range page.Patterns {
		fmt.Fprintln(deps.Stdout, p)
	}
	fmt.Fprintf(deps.Stdout, "%d - %d of %d\n", page.Start+1, page.Start+len(page.Patterns), page.Total)

	return nil
}
