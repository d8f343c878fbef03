// Package slog provides log/slog decorators for the serpblock services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/serpblock"
)

// Ensure LoggingBlocklistService implements serpblock.BlocklistService.
var _ serpblock.BlocklistService = (*LoggingBlocklistService)(nil)

// LoggingBlocklistService wraps a BlocklistService with debug logging.
type LoggingBlocklistService struct {
	next   serpblock.BlocklistService
	logger *slog.Logger
}

// NewLoggingBlocklistService creates a new LoggingBlocklistService.
func NewLoggingBlocklistService(next serpblock.BlocklistService, logger *slog.Logger) *LoggingBlocklistService {
	return &LoggingBlocklistService{next: next, logger: logger}
}

func (s *LoggingBlocklistService) GetBlocklist(ctx context.Context, filter serpblock.BlocklistFilter) (page *serpblock.BlocklistPage, err error) {
	defer func(begin time.Time) {
		var count, total int
		if page != nil {
			count, total = len(page.Patterns), page.Total
		}
		s.logger.Debug("get blocklist",
			"start", filter.Start,
			"num", filter.Num,
			"count", count,
			"total", total,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.GetBlocklist(ctx, filter)
}

func (s *LoggingBlocklistService) AddPattern(ctx context.Context, pattern string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("add pattern",
			"pattern", pattern,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.AddPattern(ctx, pattern)
}

func (s *LoggingBlocklistService) AddPatterns(ctx context.Context, patterns []string) (added int, err error) {
	defer func(begin time.Time) {
		s.logger.Info("add patterns",
			"count", len(patterns),
			"added", added,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.AddPatterns(ctx, patterns)
}

func (s *LoggingBlocklistService) DeletePattern(ctx context.Context, pattern string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete pattern",
			"pattern", pattern,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeletePattern(ctx, pattern)
}
