package serp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/serpblock"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Temporary reports whether a failed fetch may succeed when repeated.
// Engines that are throttling or failing report EUNAVAILABLE; transport
// failures without an application code count as temporary too. A refused
// request, a missing page and a cancelled context are final.
func Temporary(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch serpblock.ErrorCode(err) {
	case serpblock.EUNAVAILABLE, serpblock.EINTERNAL:
		return true
	}
	return false
}

// FetchWithRetry fetches url and repeats temporary failures once per delay.
// The first final failure is returned without further attempts. Retries are
// logged at warn level; logger may be nil.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, logger *slog.Logger, delays []time.Duration) (string, error) {
	for attempt := 0; ; attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if attempt == len(delays) || !Temporary(err) {
			return "", err
		}

		if logger != nil {
			logger.Warn("retrying fetch", "url", url, "attempt", attempt+2, "delay", delays[attempt], "err", err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
}
