//go:build integration && !windows

package rod_test

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/serpblock/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// alive reports whether process pid exists.
func alive(pid int) bool {
	return syscall.Kill(pid, syscall.Signal(0)) == nil
}

func TestFetcher_Close_StopsBrowser(t *testing.T) {
	t.Parallel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)

	pid := fetcher.LauncherPID()
	require.NotZero(t, pid)
	require.True(t, alive(pid))

	require.NoError(t, fetcher.Close())

	assert.Eventually(t, func() bool { return !alive(pid) }, 2*time.Second, 20*time.Millisecond)
}

func TestBrowserManager_Recycle_StopsOldBrowser(t *testing.T) {
	t.Parallel()

	srv := newResultsServer(t)
	manager, err := rod.NewBrowserManager(rod.WithRecycleAfter(1))
	require.NoError(t, err)
	defer manager.Close()

	_, err = manager.FetchHTML(context.Background(), srv.URL)
	require.NoError(t, err)
	first := manager.LauncherPID()

	_, err = manager.FetchHTML(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.NotEqual(t, first, manager.LauncherPID())
	assert.Eventually(t, func() bool { return !alive(first) }, 2*time.Second, 20*time.Millisecond)
}
