// Package message implements the blocklist request/response protocol on
// both ends: a Router dispatching requests to a BlocklistService and a
// Service speaking the protocol through any MessageHandler.
package message

import (
	"context"
	"sync"

	"github.com/fwojciec/serpblock"
)

var _ serpblock.MessageHandler = (*Router)(nil)

// Router dispatches blocklist messages to a BlocklistService.
type Router struct {
	Blocklist serpblock.BlocklistService

	mu        sync.RWMutex
	listeners []func()
}

// NewRouter creates a new Router.
func NewRouter(blocklist serpblock.BlocklistService) *Router {
	return &Router{Blocklist: blocklist}
}

// OnRefresh registers fn to be called for every refresh message.
func (r *Router) OnRefresh(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// HandleMessage answers req. Refresh messages are fanned out to the
// registered listeners and produce no response.
func (r *Router) HandleMessage(ctx context.Context, req *serpblock.Request) (*serpblock.Response, error) {
	if req == nil {
		return nil, serpblock.Errorf(serpblock.EINVALID, "empty message")
	}

	var (
		resp *serpblock.Response
		err  error
	)
	switch req.Type {
	case serpblock.MessageGetBlocklist:
		resp, err = r.getBlocklist(ctx, req)
	case serpblock.MessageAddToBlocklist:
		resp, err = r.addToBlocklist(ctx, req)
	case serpblock.MessageAddBulkToBlocklist:
		resp, err = r.addBulkToBlocklist(ctx, req)
	case serpblock.MessageDeleteFromBlocklist:
		resp, err = r.deleteFromBlocklist(ctx, req)
	case serpblock.MessageRefresh:
		r.refresh()
		return nil, nil
	default:
		return nil, serpblock.Errorf(serpblock.EINVALID, "unknown message type: %q", req.Type)
	}
	if err != nil {
		return nil, err
	}

	resp.ID = req.ID
	return resp, nil
}

func (r *Router) getBlocklist(ctx context.Context, req *serpblock.Request) (*serpblock.Response, error) {
	page, err := r.Blocklist.GetBlocklist(ctx, serpblock.BlocklistFilter{Start: req.Start, Num: req.Num})
	if err != nil {
		return nil, err
	}
	return &serpblock.Response{
		Blocklist: page.Patterns,
		Start:     page.Start,
		Num:       page.Num,
		Total:     page.Total,
		Revision:  page.Revision,
	}, nil
}

func (r *Router) addToBlocklist(ctx context.Context, req *serpblock.Request) (*serpblock.Response, error) {
	if err := r.Blocklist.AddPattern(ctx, req.Pattern); err != nil {
		return nil, err
	}
	return &serpblock.Response{Success: 1, Pattern: serpblock.NormalizePattern(req.Pattern)}, nil
}

func (r *Router) addBulkToBlocklist(ctx context.Context, req *serpblock.Request) (*serpblock.Response, error) {
	n, err := r.Blocklist.AddPatterns(ctx, req.Patterns)
	if err != nil {
		return nil, err
	}
	return &serpblock.Response{Success: 1, Count: n}, nil
}

func (r *Router) deleteFromBlocklist(ctx context.Context, req *serpblock.Request) (*serpblock.Response, error) {
	if err := r.Blocklist.DeletePattern(ctx, req.Pattern); err != nil {
		return nil, err
	}
	return &serpblock.Response{Success: 1, Pattern: serpblock.NormalizePattern(req.Pattern)}, nil
}

func (r *Router) refresh() {
	r.mu.RLock()
	listeners := append([]func(){}, r.listeners...)
	r.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}
