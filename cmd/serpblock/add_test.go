package main_test

import (
	"context"
	"testing"

	"github.com/fwojciec/serpblock"
	main "github.com/fwojciec/serpblock/cmd/serpblock"
	"github.com/fwojciec/serpblock/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("sanitizes and adds the pattern", func(t *testing.T) {
		t.Parallel()

		blocklist := newBlocklist(t)
		deps, stdout, stderr := newDeps(blocklist)

		err := (&main.AddCmd{Pattern: "https://www.Spam.com:8080/path"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "Blocked spam.com\n", stdout.String())
		assert.Empty(t, stderr.String())
		assert.Equal(t, []string{"spam.com"}, patterns(t, blocklist))
	})

	t.Run("signals watchers after adding", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps(newBlocklist(t))
		refresher := &countingRefresher{}
		deps.Refresher = refresher

		require.NoError(t, (&main.AddCmd{Pattern: "spam.com"}).Run(deps))
		assert.Equal(t, int32(1), refresher.calls.Load())
		assert.Empty(t, stderr.String())

		require.Error(t, (&main.AddCmd{Pattern: "not a host"}).Run(deps))
		assert.Equal(t, int32(1), refresher.calls.Load())
	})

	t.Run("a failed signal is only a warning", func(t *testing.T) {
		t.Parallel()

		blocklist := newBlocklist(t)
		deps, _, stderr := newDeps(blocklist)
		deps.Refresher = &countingRefresher{err: serpblock.Errorf(serpblock.EUNAVAILABLE, "server gone")}

		err := (&main.AddCmd{Pattern: "spam.com"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "warning: watchers not refreshed: server gone")
		assert.Equal(t, []string{"spam.com"}, patterns(t, blocklist))
	})

	t.Run("adding twice keeps one entry", func(t *testing.T) {
		t.Parallel()

		blocklist := newBlocklist(t, "spam.com")
		deps, _, _ := newDeps(blocklist)

		err := (&main.AddCmd{Pattern: "spam.com"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, []string{"spam.com"}, patterns(t, blocklist))
	})

	t.Run("rejects invalid input without calling the store", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps(&mock.BlocklistService{
			AddPatternFn: func(_ context.Context, _ string) error {
				t.Fatal("store should not be called")
				return nil
			},
		})

		err := (&main.AddCmd{Pattern: "not a domain"}).Run(deps)

		assert.Equal(t, serpblock.EINVALID, serpblock.ErrorCode(err))
		assert.Contains(t, stderr.String(), "invalid pattern")
	})
}
