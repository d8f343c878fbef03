package main_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/serpblock"
	main "github.com/fwojciec/serpblock/cmd/serpblock"
	"github.com/fwojciec/serpblock/sqlite"
	"github.com/fwojciec/serpblock/store"
	"github.com/stretchr/testify/require"
)

// newBlocklist returns a store backed by an in-memory database, seeded
// with patterns.
func newBlocklist(t *testing.T, patterns ...string) *store.Service {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })

	svc := store.NewService(sqlite.NewRecordStorage(db))
	require.NoError(t, svc.Migrate(context.Background()))
	if len(patterns) > 0 {
		_, err := svc.AddPatterns(context.Background(), patterns)
		require.NoError(t, err)
	}
	return svc
}

// newDeps returns dependencies writing to fresh buffers.
func newDeps(blocklist serpblock.BlocklistService) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:       context.Background(),
		Stdin:     &bytes.Buffer{},
		Stdout:    stdout,
		Stderr:    stderr,
		Config:    &main.Config{},
		Blocklist: blocklist,
	}, stdout, stderr
}

// patterns returns the whole blocklist.
func patterns(t *testing.T, blocklist serpblock.BlocklistService) []string {
	t.Helper()

	page, err := blocklist.GetBlocklist(context.Background(), serpblock.BlocklistFilter{})
	require.NoError(t, err)
	return page.Patterns
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// countingRefresher counts refresh signals and fails them with err.
type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(_ context.Context) error {
	r.calls.Add(1)
	return r.err
}
