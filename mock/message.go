package mock

import (
	"context"

	"github.com/fwojciec/serpblock"
)

var _ serpblock.MessageHandler = (*MessageHandler)(nil)

// MessageHandler is a mock implementation of serpblock.MessageHandler.
type MessageHandler struct {
	HandleMessageFn func(ctx context.Context, req *serpblock.Request) (*serpblock.Response, error)
}

func (h *MessageHandler) HandleMessage(ctx context.Context, req *serpblock.Request) (*serpblock.Response, error) {
	return h.HandleMessageFn(ctx, req)
}
