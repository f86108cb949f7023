// Package cli implements taskctl: a terminal client that drives the
// reactive task store against a running server.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"tasklist/internal/observability/jsonlog"
	"tasklist/internal/reactive"
	"tasklist/internal/toast"
)

// BackendFactory connects to the server at serverURL.
type BackendFactory func(serverURL string, logger *slog.Logger) (Backend, error)

type Dispatcher struct {
	registry      *Registry
	factory       BackendFactory
	defaultServer string
}

func NewDispatcher(registry *Registry, factory BackendFactory, defaultServer string) *Dispatcher {
	return &Dispatcher{
		registry:      registry,
		factory:       factory,
		defaultServer: defaultServer,
	}
}

// Run parses args, runs the selected command and returns the exit code.
// No args means "list".
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		args = []string{"list"}
	}

	name := args[0]
	if strings.HasPrefix(name, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return ExitUserError
	}
	cmd, ok := d.registry.Find(name)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return ExitUserError
	}

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		server   string
		toastTTL time.Duration
		quiet    bool
		debug    bool
	)
	fs.StringVar(&server, "server", d.defaultServer, "")
	fs.DurationVar(&toastTTL, "toast-ttl", toast.DefaultTTL, "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args[1:]); err != nil {
		msg := err.Error()
		if name, ok := strings.CutPrefix(msg, "flag provided but not defined: "); ok {
			msg = "unknown flag: " + name
		}
		fmt.Fprintf(errOut, "error: %s\n", msg)
		return ExitUserError
	}
	positional := fs.Args()

	if !cmd.NeedsBackend() {
		return cmd.Run(ctx, nil, positional, out, errOut)
	}

	level := slog.LevelError
	if debug {
		level = slog.LevelDebug
	}
	logger := jsonlog.New(errOut, level)

	backend, err := d.factory(server, logger)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return ExitUserError
	}

	toasts := toast.New(toastTTL)
	defer toasts.Close()

	env := &Env{
		Backend: backend,
		Store:   reactive.New(backend, logger),
		Toasts:  toasts,
		Quiet:   quiet,
	}
	return cmd.Run(ctx, env, positional, out, errOut)
}
