// Command httpxd serves the checksum-generator endpoint behind a
// preflight responder, along with cookie-maintenance routes.
//
// It is configured through environment variables, which may also be
// set in a .env file in the working directory:
//
//	HTTPX_ADDR             listen address (default ":4502")
//	HTTPX_PATH_PREFIX      path of the diagnostic endpoint
//	HTTPX_ALLOWED_ORIGINS  comma-separated origin patterns (default "*")
//	HTTPX_MAX_AGE          preflight max age in seconds (default 0)
//	HTTPX_JWT_SECRET       HS256 secret; if set, the endpoint requires a bearer token
//	HTTPX_LOG_LEVEL        debug, info, warn, or error (default "info")
//	HTTPX_COOKIE_PATH      path of the cookies set or dropped (default "/")
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcrtools/httpx"
	"github.com/jcrtools/httpx/internal/config"
	"github.com/jcrtools/httpx/internal/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("httpxd", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	responder, err := httpx.NewResponder(cfg.Responder(logger))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(cfg, responder, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "path_prefix", cfg.PathPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
