package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/serpblock"
)

// Ensure LoggingMessageHandler implements serpblock.MessageHandler.
var _ serpblock.MessageHandler = (*LoggingMessageHandler)(nil)

// LoggingMessageHandler wraps a MessageHandler with debug logging.
type LoggingMessageHandler struct {
	next   serpblock.MessageHandler
	logger *slog.Logger
}

// NewLoggingMessageHandler creates a new LoggingMessageHandler.
func NewLoggingMessageHandler(next serpblock.MessageHandler, logger *slog.Logger) *LoggingMessageHandler {
	return &LoggingMessageHandler{next: next, logger: logger}
}

// HandleMessage logs the request type and outcome and delegates to the
// wrapped handler.
func (h *LoggingMessageHandler) HandleMessage(ctx context.Context, req *serpblock.Request) (resp *serpblock.Response, err error) {
	defer func(begin time.Time) {
		var typ serpblock.MessageType
		var id string
		if req != nil {
			typ, id = req.Type, req.ID
		}
		attrs := []any{
			"type", typ,
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		}
		if serpblock.ErrorCode(err) == serpblock.EINTERNAL {
			h.logger.Error("message", attrs...)
			return
		}
		h.logger.Info("message", attrs...)
	}(time.Now())
	return h.next.HandleMessage(ctx, req)
}
