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

func TestDeleteCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("removes the pattern", func(t *testing.T) {
		t.Parallel()

		blocklist := newBlocklist(t, "a.com", "spam.com")
		deps, stdout, _ := newDeps(blocklist)
		refresher := &countingRefresher{}
		deps.Refresher = refresher

		err := (&main.DeleteCmd{Pattern: " Spam.com "}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "Unblocked spam.com\n", stdout.String())
		assert.Equal(t, []string{"a.com"}, patterns(t, blocklist))
		assert.Equal(t, int32(1), refresher.calls.Load())
	})

	t.Run("absent pattern is not an error", func(t *testing.T) {
		t.Parallel()

		blocklist := newBlocklist(t, "a.com")
		deps, _, _ := newDeps(blocklist)

		err := (&main.DeleteCmd{Pattern: "missing.com"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, []string{"a.com"}, patterns(t, blocklist))
	})

	t.Run("rejects an empty pattern", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newDeps(&mock.BlocklistService{
			DeletePatternFn: func(_ context.Context, _ string) error {
				t.Fatal("store should not be called")
				return nil
			},
		})

		err := (&main.DeleteCmd{Pattern: "  "}).Run(deps)

		assert.Equal(t, serpblock.EINVALID, serpblock.ErrorCode(err))
	})
}
