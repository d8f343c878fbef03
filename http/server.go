package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/fwojciec/serpblock"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ShutdownTimeout bounds how long Close waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// Server serves blocklist messages over HTTP.
type Server struct {
	ln     net.Listener
	server *http.Server
	router chi.Router

	mu          sync.Mutex
	subscribers map[chan struct{}]struct{}
	closing     chan struct{}
	closeOnce   sync.Once

	// Addr is the listen address, e.g. "127.0.0.1:7777".
	Addr string

	Handler serpblock.MessageHandler
	Logger  *slog.Logger
}

// NewServer creates a new Server.
func NewServer() *Server {
	s := &Server{
		server: &http.Server{ReadHeaderTimeout: 10 * time.Second},
		router:      chi.NewRouter(),
		subscribers: make(map[chan struct{}]struct{}),
		closing:     make(chan struct{}),
		Logger:      slog.New(slog.DiscardHandler),
	}
	s.server.Handler = s.router

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Post(MessagesPath, s.handleMessage)
	s.router.Get(EventsPath, s.handleEvents)
	return s
}

// ServeHTTP dispatches to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Open starts listening on Addr and serves in the background.
func (s *Server) Open() (err error) {
	if s.Handler == nil {
		return errors.New("message handler required")
	}
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}

	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("serve", "error", err)
		}
	}()
	return nil
}

// Close gracefully shuts down the server. Event streams are ended first.
func (s *Server) Close() error {
	s.closeOnce.Do(func() { close(s.closing) })
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req serpblock.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, serpblock.Errorf(serpblock.EINVALID, "invalid JSON body"))
		return
	}

	resp, err := s.Handler.HandleMessage(r.Context(), &req)
	if err != nil {
		if serpblock.ErrorCode(err) == serpblock.EINTERNAL {
			s.Logger.Error("message", "type", req.Type, "id", req.ID, "error", err)
		}
		Error(w, err)
		return
	}

	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, responseBody(req.Type, resp))
}
