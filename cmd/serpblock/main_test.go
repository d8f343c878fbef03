package main_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	main "github.com/fwojciec/serpblock/cmd/serpblock"
	serphttp "github.com/fwojciec/serpblock/http"
	"github.com/fwojciec/serpblock/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runMain runs the program against a database in a temporary directory.
func runMain(t *testing.T, dbPath string, stdin string, args ...string) (string, string, error) {
	t.Helper()

	m := main.NewMain()
	m.DBPath = dbPath
	m.Stdin = strings.NewReader(stdin)

	// Keep the user's config file out of the way.
	args = append([]string{"--config", writeConfig(t, "")}, args...)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := m.Run(context.Background(), args, stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("help lists every command", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		for _, cmd := range []string{"list", "add", "delete", "edit", "import", "export", "serve", "filter", "watch"} {
			assert.Contains(t, stdout.String(), cmd)
		}
	})

	t.Run("no command is an error", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()

		err := m.Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no command specified")
	})

	t.Run("unknown command is an error", func(t *testing.T) {
		t.Parallel()

		_, _, err := runMain(t, filepath.Join(t.TempDir(), "test.db"), "", "frobnicate")

		require.Error(t, err)
	})

	t.Run("blocklist persists between runs", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "test.db")

		_, _, err := runMain(t, dbPath, "", "add", "https://www.spam.net/page")
		require.NoError(t, err)
		_, _, err = runMain(t, dbPath, "a.com\nb.com\n", "import")
		require.NoError(t, err)
		_, _, err = runMain(t, dbPath, "", "delete", "a.com")
		require.NoError(t, err)

		stdout, _, err := runMain(t, dbPath, "", "export")
		require.NoError(t, err)
		assert.Equal(t, "b.com\nspam.net\n", stdout)
	})

	t.Run("db flag overrides the default path", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		other := filepath.Join(dir, "other.db")

		_, _, err := runMain(t, filepath.Join(dir, "default.db"), "", "--db", other, "add", "x.com")
		require.NoError(t, err)

		assert.FileExists(t, other)
		assert.NoFileExists(t, filepath.Join(dir, "default.db"))
	})

	t.Run("config file names the database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dbPath := filepath.Join(dir, "configured.db")
		configPath := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("db: "+dbPath+"\n"), 0644))

		m := main.NewMain()
		m.DBPath = filepath.Join(dir, "default.db")
		err := m.Run(context.Background(), []string{"--config", configPath, "add", "x.com"}, &bytes.Buffer{}, &bytes.Buffer{})
		require.NoError(t, err)

		assert.FileExists(t, dbPath)
	})

	t.Run("server flag uses a running server", func(t *testing.T) {
		t.Parallel()

		blocklist := newBlocklist(t, "a.com")
		var refreshes atomic.Int32
		router := message.NewRouter(blocklist)
		router.OnRefresh(func() { refreshes.Add(1) })
		server := serphttp.NewServer()
		server.Handler = router
		ts := httptest.NewServer(server)
		t.Cleanup(ts.Close)

		dbPath := filepath.Join(t.TempDir(), "unused.db")
		_, _, err := runMain(t, dbPath, "", "--server", ts.URL, "add", "b.com")
		require.NoError(t, err)
		assert.Equal(t, int32(1), refreshes.Load())

		stdout, _, err := runMain(t, dbPath, "", "--server", ts.URL, "list")
		require.NoError(t, err)
		assert.Contains(t, stdout, "a.com")
		assert.Contains(t, stdout, "b.com")
		assert.Equal(t, []string{"a.com", "b.com"}, patterns(t, blocklist))
		assert.NoFileExists(t, dbPath)
	})

	t.Run("filters a saved page", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dbPath := filepath.Join(dir, "test.db")
		page := filepath.Join(dir, "results.html")
		require.NoError(t, os.WriteFile(page, []byte(resultsHTML), 0644))

		_, _, err := runMain(t, dbPath, "", "add", "spam.net")
		require.NoError(t, err)

		stdout, stderr, err := runMain(t, dbPath, "", "filter", "--format", "summary", page)
		require.NoError(t, err)
		assert.Contains(t, stdout, "[x] spam.net")
		assert.Contains(t, stderr, "removed 1 of 2 results")
	})
}
