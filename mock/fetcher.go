package mock

import (
	"context"

	"github.com/fwojciec/serpblock"
)

var _ serpblock.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of serpblock.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ serpblock.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of serpblock.DomainLimiter.
type DomainLimiter struct {
	WaitFn     func(ctx context.Context, host string) error
	ThrottleFn func(host string)
}

func (l *DomainLimiter) Wait(ctx context.Context, host string) error {
	return l.WaitFn(ctx, host)
}

func (l *DomainLimiter) Throttle(host string) {
	l.ThrottleFn(host)
}
