package mock

import (
	"context"

	"github.com/fwojciec/serpblock"
)

// Compile-time interface verification.
var (
	_ serpblock.PageParser = (*PageParser)(nil)
	_ serpblock.PageStore  = (*PageStore)(nil)
)

// PageParser is a mock implementation of serpblock.PageParser.
type PageParser struct {
	ParseFn func(html, pageURL string) (serpblock.Document, error)
}

func (p *PageParser) Parse(html, pageURL string) (serpblock.Document, error) {
	return p.ParseFn(html, pageURL)
}

// PageStore is a mock implementation of serpblock.PageStore.
type PageStore struct {
	SaveFn   func(ctx context.Context, page *serpblock.FilteredPage) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *PageStore) Save(ctx context.Context, page *serpblock.FilteredPage) error {
	return s.SaveFn(ctx, page)
}

func (s *PageStore) Commit() error {
	return s.CommitFn()
}

func (s *PageStore) Abort() error {
	return s.AbortFn()
}
