package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	serphttp "github.com/fwojciec/serpblock/http"
	"github.com/fwojciec/serpblock/message"
	serpslog "github.com/fwojciec/serpblock/slog"
)

// Run executes the serve command. It blocks until interrupted.
func (c *ServeCmd) Run(deps *Dependencies) error {
	addr := c.Addr
	if addr == "" && deps.Config != nil {
		addr = deps.Config.Addr
	}
	if addr == "" {
		addr = DefaultAddr
	}

	server := serphttp.NewServer()
	router := message.NewRouter(deps.Blocklist)
	router.OnRefresh(func() {
		deps.Logger.Info("refresh requested", "watchers", server.Subscribers())
		server.Notify()
	})

	server.Addr = addr
	server.Handler = serpslog.NewLoggingMessageHandler(router, deps.Logger)
	server.Logger = deps.Logger

	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Serving blocklist at %s\n", server.URL())

	<-ctx.Done()
	return server.Close()
}
