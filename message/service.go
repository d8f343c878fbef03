package message

import (
	"context"

	"github.com/fwojciec/serpblock"
	"github.com/google/uuid"
)

var _ serpblock.BlocklistService = (*Service)(nil)

// Service implements serpblock.BlocklistService by exchanging messages
// with a MessageHandler. Every request carries a fresh id; a response
// carrying a different id is rejected.
type Service struct {
	Handler serpblock.MessageHandler
}

// NewService creates a new Service.
func NewService(handler serpblock.MessageHandler) *Service {
	return &Service{Handler: handler}
}

// GetBlocklist requests a window of the blocklist.
func (s *Service) GetBlocklist(ctx context.Context, filter serpblock.BlocklistFilter) (*serpblock.BlocklistPage, error) {
	resp, err := s.send(ctx, &serpblock.Request{
		Type:  serpblock.MessageGetBlocklist,
		Start: filter.Start,
		Num:   filter.Num,
	})
	if err != nil {
		return nil, err
	}
	patterns := resp.Blocklist
	if patterns == nil {
		patterns = []string{}
	}
	return &serpblock.BlocklistPage{
		Patterns: patterns,
		Start:    resp.Start,
		Num:      resp.Num,
		Total:    resp.Total,
		Revision: resp.Revision,
	}, nil
}

// AddPattern requests pattern to be added.
func (s *Service) AddPattern(ctx context.Context, pattern string) error {
	_, err := s.send(ctx, &serpblock.Request{Type: serpblock.MessageAddToBlocklist, Pattern: pattern})
	return err
}

// AddPatterns requests patterns to be added and returns how many were new.
func (s *Service) AddPatterns(ctx context.Context, patterns []string) (int, error) {
	resp, err := s.send(ctx, &serpblock.Request{Type: serpblock.MessageAddBulkToBlocklist, Patterns: patterns})
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// DeletePattern requests pattern to be removed.
func (s *Service) DeletePattern(ctx context.Context, pattern string) error {
	_, err := s.send(ctx, &serpblock.Request{Type: serpblock.MessageDeleteFromBlocklist, Pattern: pattern})
	return err
}

// Refresh broadcasts a refresh signal.
func (s *Service) Refresh(ctx context.Context) error {
	_, err := s.Handler.HandleMessage(ctx, &serpblock.Request{
		ID:   uuid.NewString(),
		Type: serpblock.MessageRefresh,
	})
	return err
}

func (s *Service) send(ctx context.Context, req *serpblock.Request) (*serpblock.Response, error) {
	req.ID = uuid.NewString()

	resp, err := s.Handler.HandleMessage(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, serpblock.Errorf(serpblock.EUNAVAILABLE, "no response to %s", req.Type)
	}
	if resp.ID != "" && resp.ID != req.ID {
		return nil, serpblock.Errorf(serpblock.ECONFLICT, "response %s does not answer request %s", resp.ID, req.ID)
	}

	// Drop answers that arrive after the caller gave up.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}
