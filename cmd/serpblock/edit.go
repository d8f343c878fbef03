package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/serpblock"
)

// Run executes the edit command.
func (c *EditCmd) Run(deps *Dependencies) error {
	old := strings.ToLower(strings.TrimSpace(c.Pattern))
	_, domain := serpblock.SplitPattern(old)
	pattern := strings.ToLower(serpblock.AssemblePattern(c.Subdomain, domain))

	if !serpblock.ValidateHost(pattern) {
		fmt.Fprintf(deps.Stderr, "error: invalid pattern %q\n", pattern)
		return serpblock.Errorf(serpblock.EINVALID, "invalid pattern %q", pattern)
	}

	if pattern == old {
		fmt.Fprintf(deps.Stdout, "%s unchanged\n", old)
		return nil
	}

	if err := deps.Blocklist.DeletePattern(deps.Ctx, old); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpblock.ErrorMessage(err))
		return err
	}
	if err := deps.Blocklist.AddPattern(deps.Ctx, pattern); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpblock.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Replaced %s with %s\n", old, pattern)
	notifyWatchers(deps)
	return nil
}
