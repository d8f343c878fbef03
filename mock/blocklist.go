package mock

import (
	"context"

	"github.com/fwojciec/serpblock"
)

var (
	_ serpblock.BlocklistService = (*BlocklistService)(nil)
	_ serpblock.RecordStorage    = (*RecordStorage)(nil)
)

// BlocklistService is a mock implementation of serpblock.BlocklistService.
type BlocklistService struct {
	GetBlocklistFn  func(ctx context.Context, filter serpblock.BlocklistFilter) (*serpblock.BlocklistPage, error)
	AddPatternFn    func(ctx context.Context, pattern string) error
	AddPatternsFn   func(ctx context.Context, patterns []string) (int, error)
	DeletePatternFn func(ctx context.Context, pattern string) error
}

func (s *BlocklistService) GetBlocklist(ctx context.Context, filter serpblock.BlocklistFilter) (*serpblock.BlocklistPage, error) {
	return s.GetBlocklistFn(ctx, filter)
}

func (s *BlocklistService) AddPattern(ctx context.Context, pattern string) error {
	return s.AddPatternFn(ctx, pattern)
}

func (s *BlocklistService) AddPatterns(ctx context.Context, patterns []string) (int, error) {
	return s.AddPatternsFn(ctx, patterns)
}

func (s *BlocklistService) DeletePattern(ctx context.Context, pattern string) error {
	return s.DeletePatternFn(ctx, pattern)
}

// RecordStorage is a mock implementation of serpblock.RecordStorage.
type RecordStorage struct {
	LoadFn    func(ctx context.Context) (*serpblock.Record, error)
	UpdateFn  func(ctx context.Context, fn func(rec *serpblock.Record) error) error
	MigrateFn func(ctx context.Context, fn func(rec, legacy *serpblock.Record) error) error
}

func (s *RecordStorage) Load(ctx context.Context) (*serpblock.Record, error) {
	return s.LoadFn(ctx)
}

func (s *RecordStorage) Update(ctx context.Context, fn func(rec *serpblock.Record) error) error {
	return s.UpdateFn(ctx, fn)
}

func (s *RecordStorage) Migrate(ctx context.Context, fn func(rec, legacy *serpblock.Record) error) error {
	return s.MigrateFn(ctx, fn)
}
