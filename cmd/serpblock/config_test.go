package main_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/serpblock"
	main "github.com/fwojciec/serpblock/cmd/serpblock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("reads every field", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "db: /tmp/list.db\nserver: http://127.0.0.1:7777\naddr: 127.0.0.1:9000\ninterval: 250ms\n")

		cfg, err := main.LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, &main.Config{
			DB:       "/tmp/list.db",
			Server:   "http://127.0.0.1:7777",
			Addr:     "127.0.0.1:9000",
			Interval: 250 * time.Millisecond,
		}, cfg)
	})

	t.Run("empty file is an empty config", func(t *testing.T) {
		t.Parallel()

		cfg, err := main.LoadConfig(writeConfig(t, ""))

		require.NoError(t, err)
		assert.Equal(t, &main.Config{}, cfg)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()

		_, err := main.LoadConfig(writeConfig(t, "database: x.db\n"))

		assert.Equal(t, serpblock.EINVALID, serpblock.ErrorCode(err))
	})

	t.Run("explicit missing file is not found", func(t *testing.T) {
		t.Parallel()

		_, err := main.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

		assert.Equal(t, serpblock.ENOTFOUND, serpblock.ErrorCode(err))
	})
}
