package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/serpblock"
)

// Ensure LoggingPageParser implements serpblock.PageParser.
var _ serpblock.PageParser = (*LoggingPageParser)(nil)

// LoggingPageParser wraps a PageParser with debug logging of how many
// results were found on each page.
type LoggingPageParser struct {
	next   serpblock.PageParser
	logger *slog.Logger
}

// NewLoggingPageParser creates a new LoggingPageParser.
func NewLoggingPageParser(next serpblock.PageParser, logger *slog.Logger) *LoggingPageParser {
	return &LoggingPageParser{next: next, logger: logger}
}

// Parse delegates to the wrapped parser and logs the result count.
func (p *LoggingPageParser) Parse(html, pageURL string) (doc serpblock.Document, err error) {
	defer func(begin time.Time) {
		results := 0
		if err == nil && doc != nil {
			results = len(doc.Results())
		}
		p.logger.Info("parse page",
			"url", pageURL,
			"results", results,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Parse(html, pageURL)
}
