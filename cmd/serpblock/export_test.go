package main_test

import (
	"os"
	"path/filepath"
	"testing"

	main "github.com/fwojciec/serpblock/cmd/serpblock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints one pattern per line", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(newBlocklist(t, "b.com", "a.com"))

		err := (&main.ExportCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "a.com\nb.com\n", stdout.String())
	})

	t.Run("writes a file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out", "blocklist.txt")
		deps, stdout, _ := newDeps(newBlocklist(t, "a.com", "b.com"))

		err := (&main.ExportCmd{Output: path}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Exported 2 patterns")
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "a.com\nb.com\n", string(content))
	})

	t.Run("empty list exports nothing", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(newBlocklist(t))

		err := (&main.ExportCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Empty(t, stdout.String())
	})
}
