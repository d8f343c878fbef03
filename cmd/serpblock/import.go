package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/serpblock"
)

// Run executes the import command.
func (c *ImportCmd) Run(deps *Dependencies) error {
	in := deps.Stdin
	if c.File != "" && c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
		defer f.Close()
		in = f
	}

	lines, err := readLines(in)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error reading patterns: %v\n", err)
		return err
	}

	patterns := serpblock.SanitizePatterns(lines)
	if skipped := len(lines) - len(patterns); skipped > 0 {
		fmt.Fprintf(deps.Stderr, "skipped %d invalid lines\n", skipped)
	}
	if len(patterns) == 0 {
		fmt.Fprintln(deps.Stdout, "0 valid patterns added")
		return nil
	}

	if _, err := deps.Blocklist.AddPatterns(deps.Ctx, patterns); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serpblock.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "%d valid patterns added\n", len(patterns))
	notifyWatchers(deps)
	return nil
}

// readLines returns the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
