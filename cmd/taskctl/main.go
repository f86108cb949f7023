// Command taskctl manages tasks on a running tasklist server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tasklist/internal/cli"
	"tasklist/internal/client"
)

const defaultServer = "http://localhost:8080"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	server := os.Getenv("TASKS_SERVER")
	if server == "" {
		server = defaultServer
	}

	factory := func(serverURL string, logger *slog.Logger) (cli.Backend, error) {
		return client.New(serverURL, client.WithLogger(logger))
	}

	code := cli.NewDispatcher(cli.DefaultRegistry(), factory, server).Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
