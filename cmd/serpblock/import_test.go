package main_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	main "github.com/fwojciec/serpblock/cmd/serpblock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("reads patterns from stdin", func(t *testing.T) {
		t.Parallel()

		blocklist := newBlocklist(t, "a.com")
		deps, stdout, stderr := newDeps(blocklist)
		deps.Stdin = strings.NewReader("https://www.b.com/page\n\n  c.com  \nnot valid\na.com\n")
		refresher := &countingRefresher{}
		deps.Refresher = refresher

		err := (&main.ImportCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, int32(1), refresher.calls.Load())
		assert.Equal(t, "3 valid patterns added\n", stdout.String())
		assert.Contains(t, stderr.String(), "skipped 1 invalid lines")
		assert.Equal(t, []string{"a.com", "b.com", "c.com"}, patterns(t, blocklist))
	})

	t.Run("reads patterns from a file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "list.txt")
		require.NoError(t, os.WriteFile(path, []byte("x.com\ny.org\n"), 0644))
		blocklist := newBlocklist(t)
		deps, stdout, _ := newDeps(blocklist)

		err := (&main.ImportCmd{File: path}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "2 valid patterns added\n", stdout.String())
		assert.Equal(t, []string{"x.com", "y.org"}, patterns(t, blocklist))
	})

	t.Run("nothing valid adds nothing", func(t *testing.T) {
		t.Parallel()

		blocklist := newBlocklist(t)
		deps, stdout, _ := newDeps(blocklist)
		deps.Stdin = strings.NewReader("???\n")

		err := (&main.ImportCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "0 valid patterns added\n", stdout.String())
		assert.Empty(t, patterns(t, blocklist))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps(newBlocklist(t))

		err := (&main.ImportCmd{File: filepath.Join(t.TempDir(), "missing.txt")}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
	})
}
