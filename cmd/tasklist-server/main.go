package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tasklist/internal/config"
	"tasklist/internal/observability/jsonlog"
)

func main() {
	addr := flag.String("addr", "", "listen address, overrides TASKS_ADDR")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	logger := jsonlog.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	// Root context cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", "err", err)
		stop()
		os.Exit(1)
	}
	logger.Info("bye")
}
