package main

import (
	"fmt"

	"github.com/fwojciec/serpblock"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	pattern := serpblock.NormalizePattern(c.Pattern)
	if pattern == "" {
		fmt.Fprintln(deps.Stderr, "error: pattern required")
		return serpblock.Errorf(serpblock.EINVALID, "pattern required")
	}

	if err := deps.Blocklist.DeletePattern(deps.Ctx, pattern); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpblock.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Unblocked %s\n", pattern)
	notifyWatchers(deps)
	return nil
}
