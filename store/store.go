// Package store implements the blocklist store: the authoritative, persisted
// set of blocked host patterns.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/serpblock"
)

var _ serpblock.BlocklistService = (*Service)(nil)

// Service implements serpblock.BlocklistService on top of a RecordStorage.
// Mutations are serialized in-process and run as read-modify-write cycles
// against the latest persisted record.
type Service struct {
	storage serpblock.RecordStorage
	mu      sync.Mutex
}

// NewService creates a new Service.
func NewService(storage serpblock.RecordStorage) *Service {
	return &Service{storage: storage}
}

// Migrate upgrades unversioned storage to the current layout. It is a no-op
// once the record carries a version and may be called on every startup.
func (s *Service) Migrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.storage.Migrate(ctx, func(rec, legacy *serpblock.Record) error {
		if rec.Version >= serpblock.StorageVersion {
			return nil
		}

		src := rec
		if legacy != nil {
			src = legacy
		}

		data, err := encodeBlocklist(repairBlocklist(src.Blocklist))
		if err != nil {
			return err
		}

		disabled := "false"
		if src.Disabled == "true" {
			disabled = "true"
		}

		rec.Version = serpblock.StorageVersion
		rec.Blocklist = data
		rec.Disabled = disabled
		return nil
	})
}

// GetBlocklist returns a sorted window of the blocklist.
func (s *Service) GetBlocklist(ctx context.Context, filter serpblock.BlocklistFilter) (*serpblock.BlocklistPage, error) {
	rec, err := s.storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load blocklist: %w", err)
	}

	patterns, err := decodeBlocklist(rec.Blocklist)
	if err != nil {
		return nil, err
	}
	slices.Sort(patterns)

	total := len(patterns)
	start := min(max(filter.Start, 0), total)
	end := total
	if filter.Num > 0 {
		end = min(start+filter.Num, total)
	}

	return &serpblock.BlocklistPage{
		Patterns: slices.Clone(patterns[start:end]),
		Start:    start,
		Num:      filter.Num,
		Total:    total,
		Revision: revision(patterns),
	}, nil
}

// AddPattern inserts pattern if it is not present yet.
func (s *Service) AddPattern(ctx context.Context, pattern string) error {
	pattern = serpblock.NormalizePattern(pattern)
	if !serpblock.ValidateHost(pattern) {
		return serpblock.Errorf(serpblock.EINVALID, "invalid pattern: %q", pattern)
	}

	_, err := s.update(ctx, func(patterns []string) []string {
		return insert(patterns, pattern)
	})
	return err
}

// AddPatterns inserts every pattern not yet present in one write and returns
// how many were added. An invalid pattern rejects the whole batch.
func (s *Service) AddPatterns(ctx context.Context, raw []string) (int, error) {
	patterns := make([]string, len(raw))
	for i, p := range raw {
		patterns[i] = serpblock.NormalizePattern(p)
		if !serpblock.ValidateHost(patterns[i]) {
			return 0, serpblock.Errorf(serpblock.EINVALID, "invalid pattern: %q", p)
		}
	}

	return s.update(ctx, func(current []string) []string {
		for _, p := range patterns {
			current = insert(current, p)
		}
		return current
	})
}

// DeletePattern removes pattern if present.
func (s *Service) DeletePattern(ctx context.Context, pattern string) error {
	pattern = serpblock.NormalizePattern(pattern)
	_, err := s.update(ctx, func(patterns []string) []string {
		if i, ok := slices.BinarySearch(patterns, pattern); ok {
			return slices.Delete(patterns, i, i+1)
		}
		return patterns
	})
	return err
}

// update applies fn to the persisted blocklist and returns the change in size.
func (s *Service) update(ctx context.Context, fn func(patterns []string) []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var delta int
	err := s.storage.Update(ctx, func(rec *serpblock.Record) error {
		patterns, err := decodeBlocklist(rec.Blocklist)
		if err != nil {
			return err
		}
		slices.Sort(patterns)
		patterns = slices.Compact(patterns)
		before := len(patterns)

		patterns = fn(patterns)

		data, err := encodeBlocklist(patterns)
		if err != nil {
			return err
		}
		if rec.Version == 0 {
			rec.Version = serpblock.StorageVersion
		}
		if rec.Disabled == "" {
			rec.Disabled = "false"
		}
		rec.Blocklist = data
		delta = len(patterns) - before
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("update blocklist: %w", err)
	}
	return delta, nil
}

// insert adds pattern to the sorted slice unless it is already there.
func insert(patterns []string, pattern string) []string {
	i, ok := slices.BinarySearch(patterns, pattern)
	if ok {
		return patterns
	}
	return slices.Insert(patterns, i, pattern)
}

func decodeBlocklist(data string) ([]string, error) {
	if data == "" {
		return []string{}, nil
	}
	var patterns []string
	if err := json.Unmarshal([]byte(data), &patterns); err != nil {
		return nil, fmt.Errorf("decode blocklist: %w", err)
	}
	if patterns == nil {
		patterns = []string{}
	}
	return patterns, nil
}

func encodeBlocklist(patterns []string) (string, error) {
	if patterns == nil {
		patterns = []string{}
	}
	data, err := json.Marshal(patterns)
	if err != nil {
		return "", fmt.Errorf("encode blocklist: %w", err)
	}
	return string(data), nil
}

// repairBlocklist salvages what it can from possibly malformed data: the
// string entries of a JSON array that are valid patterns, deduplicated and
// sorted. Anything else yields an empty list.
func repairBlocklist(data string) []string {
	var entries []any
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return []string{}
	}

	patterns := make([]string, 0, len(entries))
	for _, e := range entries {
		s, ok := e.(string)
		if !ok {
			continue
		}
		s = serpblock.NormalizePattern(s)
		if serpblock.ValidateHost(s) {
			patterns = append(patterns, s)
		}
	}
	slices.Sort(patterns)
	return slices.Compact(patterns)
}

// revision fingerprints a sorted blocklist.
func revision(patterns []string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(strings.Join(patterns, "\n")))
}
