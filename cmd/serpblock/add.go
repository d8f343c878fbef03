package main

import (
	"fmt"

	"github.com/fwojciec/serpblock"
)

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	pattern, err := serpblock.SanitizePattern(c.Pattern)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpblock.ErrorMessage(err))
		return err
	}

	if err := deps.Blocklist.AddPattern(deps.Ctx, pattern); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpblock.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Blocked %s\n", pattern)
	notifyWatchers(deps)
	return nil
}
