package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"

	"github.com/tuvibe/go-admin/pkg/admin"
)

const shutdownTimeout = 5 * time.Second

type serveCmd struct {
	Addr    string `help:"Listen address, overriding configuration."`
	NetHTTP bool   `name:"net-http" help:"Serve with net/http instead of Fiber."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals, e *env) error {
	a, logger, err := g.open(e)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, err := g.settings()
	if err != nil {
		return err
	}
	addr := cmd.Addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	logger.Info("admin console ready", "addr", addr, "base_path", a.BasePath(), "backend", a.Client().BaseURL())

	if cmd.NetHTTP {
		return serveNetHTTP(ctx, addr, a.Handler())
	}

	server := router.NewFiberAdapter()
	if err := admin.Register[*fiber.App](a, server.Router()); err != nil {
		return err
	}
	errs := make(chan error, 1)
	go func() { errs <- server.Serve(addr) }()
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	}
}

func serveNetHTTP(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errs := make(chan error, 1)
	go func() { errs <- srv.ListenAndServe() }()
	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
