package http

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fwojciec/serpblock"
)

// EventsPath is the route streaming refresh signals to watchers.
const EventsPath = "/events"

// refreshEvent is the server-sent event name of a refresh signal.
const refreshEvent = "refresh"

var _ serpblock.RefreshSubscriber = (*Client)(nil)

// Notify sends a refresh signal to every connected event stream. Streams
// that have a signal pending are not sent another.
func (s *Server) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of connected event streams.
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

func (s *Server) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan struct{}) {
	s.mu.Lock()
	delete(s.subscribers, ch)
	s.mu.Unlock()
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		Error(w, serpblock.Errorf(serpblock.EINTERNAL, "streaming unsupported"))
		return
	}

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": subscribed\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.closing:
			return
		case <-ch:
			if _, err := fmt.Fprintf(w, "event: %s\ndata: {}\n\n", refreshEvent); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// SubscribeRefresh streams the server's refresh signals, calling fn for
// each one, until ctx is done or the server ends the stream.
func (c *Client) SubscribeRefresh(ctx context.Context, fn func()) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL+EventsPath, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return serpblock.Errorf(serpblock.EUNAVAILABLE, "blocklist server unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseResponseError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "event: "+refreshEvent {
			fn()
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("read events: %w", err)
	}
	return nil
}
