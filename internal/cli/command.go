package cli

import (
	"context"
	"flag"
	"io"
	"sort"

	"tasklist/internal/reactive"
	"tasklist/internal/toast"
)

// Backend is what taskctl needs from a server connection.
type Backend interface {
	reactive.Backend
	reactive.ChangeFeed
}

// Env carries the per-invocation state handed to a command.
type Env struct {
	Backend Backend
	Store   *reactive.Store
	Toasts  *toast.Store
	Quiet   bool
}

type Command interface {
	Name() string
	Synopsis() string
	Usage() string

	// NeedsBackend is false for commands that never talk to the server.
	NeedsBackend() bool

	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command with the positional args left after flag
	// parsing and returns an exit code. env is nil if NeedsBackend is false.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

type Registry struct {
	cmds map[string]Command
}

func NewRegistry(cmds ...Command) *Registry {
	r := &Registry{cmds: make(map[string]Command, len(cmds))}
	for _, c := range cmds {
		if _, exists := r.cmds[c.Name()]; exists {
			panic("command already registered: " + c.Name())
		}
		r.cmds[c.Name()] = c
	}
	return r
}

func (r *Registry) Find(name string) (Command, bool) {
	c, ok := r.cmds[name]
	return c, ok
}

// All returns the commands sorted by name.
func (r *Registry) All() []Command {
	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Command, len(names))
	for i, name := range names {
		out[i] = r.cmds[name]
	}
	return out
}

// DefaultRegistry returns a fresh registry with every taskctl command.
// Commands keep flag state, so each Run gets its own instances.
func DefaultRegistry() *Registry {
	r := NewRegistry(
		&ListCmd{},
		&AddCmd{},
		&DoneCmd{},
		&UndoCmd{},
		&EditCmd{},
		&RmCmd{},
		&ClearCmd{},
		&WatchCmd{},
		&ExportCmd{},
	)
	r.cmds["help"] = &HelpCmd{registry: r}
	return r
}
