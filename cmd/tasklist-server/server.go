package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"tasklist/internal/config"
	"tasklist/internal/httpapi"
	"tasklist/internal/realtime"
	"tasklist/internal/task"
)

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return serve(ctx, ln, cfg, logger)
}

// serve runs the API on ln until ctx is done, then drains in-flight
// requests for at most cfg.ShutdownTimeout.
func serve(ctx context.Context, ln net.Listener, cfg config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	openCtx, openCancel := context.WithTimeout(ctx, 5*time.Second)
	b, err := openBackend(openCtx, cfg, logger)
	openCancel()
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	defer func() {
		if err := b.close(); err != nil {
			logger.Warn("backend close failed", "err", err)
		}
	}()

	hub := realtime.NewHub(64, logger)
	defer hub.Close()

	var pub task.Publisher = hub
	var wg sync.WaitGroup
	if b.feed != nil {
		// The store notifies on its own; publishing from the service too
		// would deliver every local write twice.
		pub = nil
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.feed.Watch(ctx, hub.Publish)
		}()
	}

	svc := task.NewService(b.repo, pub, logger)
	handler := httpapi.NewServer(svc, httpapi.Options{
		Logger:         logger,
		Hub:            hub,
		Pinger:         b.pinger,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", ln.Addr().String(), "backend", cfg.Backend)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			cancel()
			wg.Wait()
			return fmt.Errorf("serve: %w", err)
		}
	}

	// Change streams are hijacked connections that Shutdown does not wait
	// for; closing the hub ends them cleanly.
	hub.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "err", err)
	}

	cancel()
	wg.Wait()
	return nil
}
