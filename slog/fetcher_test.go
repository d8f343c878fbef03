package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/serpblock"
	"github.com/fwojciec/serpblock/goquery"
	"github.com/fwojciec/serpblock/mock"
	serpslog "github.com/fwojciec/serpblock/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoResultsHTML = `<html><body><ol>
<li class="g"><h3><a href="https://good.com/a">Good</a></h3></li>
<li class="g"><h3><a href="https://spam.net/b">Spam</a></h3></li>
</ol></body></html>`

func fetcherReturning(html string, err error) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (string, error) {
			return html, err
		},
	}
}

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs the result count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		fetcher := serpslog.NewLoggingFetcher(fetcherReturning(twoResultsHTML, nil), goquery.NewParser(), logger)
		html, err := fetcher.Fetch(context.Background(), "https://search.example/search?q=widgets")

		require.NoError(t, err)
		assert.Equal(t, twoResultsHTML, html)
		output := buf.String()
		assert.Contains(t, output, "level=INFO msg=fetch")
		assert.Contains(t, output, "url=\"https://search.example/search?q=widgets\"")
		assert.Contains(t, output, "results=2")
		assert.Contains(t, output, "duration=")
	})

	t.Run("warns about a page without results", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		fetcher := serpslog.NewLoggingFetcher(fetcherReturning("<html><body>Verify you are human</body></html>", nil), goquery.NewParser(), logger)
		_, err := fetcher.Fetch(context.Background(), "https://search.example/search")

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, "results=0")
	})

	t.Run("unparsable page is counted as unknown", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		parser := &mock.PageParser{
			ParseFn: func(html, pageURL string) (serpblock.Document, error) {
				return nil, serpblock.Errorf(serpblock.EINVALID, "bad markup")
			},
		}

		fetcher := serpslog.NewLoggingFetcher(fetcherReturning("<html>", nil), parser, logger)
		_, err := fetcher.Fetch(context.Background(), "https://search.example/search")

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "results=-1")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		parsed := false
		parser := &mock.PageParser{
			ParseFn: func(html, pageURL string) (serpblock.Document, error) {
				parsed = true
				return nil, nil
			},
		}

		fetcher := serpslog.NewLoggingFetcher(fetcherReturning("", errors.New("network error")), parser, logger)
		_, err := fetcher.Fetch(context.Background(), "https://search.example/search")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "err=\"network error\"")
		assert.NotContains(t, output, "results=")
		assert.False(t, parsed)
	})
}

func TestLoggingFetcher_Close(t *testing.T) {
	t.Parallel()

	t.Run("delegates to inner fetcher", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		closeCalled := false
		inner := &mock.Fetcher{
			CloseFn: func() error {
				closeCalled = true
				return nil
			},
		}

		fetcher := serpslog.NewLoggingFetcher(inner, goquery.NewParser(), logger)
		err := fetcher.Close()

		require.NoError(t, err)
		assert.True(t, closeCalled)
	})
}
