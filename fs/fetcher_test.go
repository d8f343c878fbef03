package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/serpblock"
	"github.com/fwojciec/serpblock/fs"
	"github.com/fwojciec/serpblock/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLocal(t *testing.T) {
	t.Parallel()

	assert.True(t, fs.IsLocal("results.html"))
	assert.True(t, fs.IsLocal("/tmp/results.html"))
	assert.True(t, fs.IsLocal("file:///tmp/results.html"))
	assert.False(t, fs.IsLocal("https://search.example/search?q=x"))
	assert.False(t, fs.IsLocal("http://search.example/"))
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("reads local paths", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "results.html")
		require.NoError(t, os.WriteFile(path, []byte("<html>saved</html>"), 0644))
		f := &fs.Fetcher{}

		got, err := f.Fetch(context.Background(), path)

		require.NoError(t, err)
		assert.Equal(t, "<html>saved</html>", got)
	})

	t.Run("reads file URLs", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "results.html")
		require.NoError(t, os.WriteFile(path, []byte("<html>saved</html>"), 0644))
		f := &fs.Fetcher{}

		got, err := f.Fetch(context.Background(), "file://"+filepath.ToSlash(path))

		require.NoError(t, err)
		assert.Equal(t, "<html>saved</html>", got)
	})

	t.Run("missing file is not found", func(t *testing.T) {
		t.Parallel()

		f := &fs.Fetcher{}

		_, err := f.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.html"))

		assert.Equal(t, serpblock.ENOTFOUND, serpblock.ErrorCode(err))
	})

	t.Run("delegates web pages to the next fetcher", func(t *testing.T) {
		t.Parallel()

		var fetched string
		f := &fs.Fetcher{Next: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				fetched = url
				return "<html>live</html>", nil
			},
		}}

		got, err := f.Fetch(context.Background(), "https://search.example/search?q=x")

		require.NoError(t, err)
		assert.Equal(t, "<html>live</html>", got)
		assert.Equal(t, "https://search.example/search?q=x", fetched)
	})

	t.Run("web page without next fetcher is invalid", func(t *testing.T) {
		t.Parallel()

		f := &fs.Fetcher{}

		_, err := f.Fetch(context.Background(), "https://search.example/")

		assert.Equal(t, serpblock.EINVALID, serpblock.ErrorCode(err))
	})
}

func TestFetcher_Close(t *testing.T) {
	t.Parallel()

	var closed bool
	f := &fs.Fetcher{Next: &mock.Fetcher{CloseFn: func() error {
		closed = true
		return nil
	}}}

	require.NoError(t, f.Close())
	assert.True(t, closed)
	assert.NoError(t, (&fs.Fetcher{}).Close())
}
