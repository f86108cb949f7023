package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasklist/internal/model"
	"tasklist/internal/toast"
)

// finish prints pending toasts, then the cached list unless quiet.
func finish(env *Env, out io.Writer, code int) int {
	formatToasts(out, env.Toasts.List())
	if code == ExitSuccess && !env.Quiet {
		formatTasks(out, env.Store.Tasks())
	}
	return code
}

func load(ctx context.Context, env *Env, errOut io.Writer) bool {
	if env.Store.Load(ctx) {
		return true
	}
	env.Toasts.Add("Could not load tasks", toast.Error)
	fmt.Fprintln(errOut, "error: backend error: could not load tasks")
	return false
}

func joinText(args []string) (string, bool) {
	text := strings.Join(args, " ")
	return text, strings.TrimSpace(text) != ""
}

func findTask(env *Env, raw string) (model.Task, bool) {
	id := model.ID(strings.TrimSpace(raw))
	for _, t := range env.Store.Tasks() {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// lookup resolves the single id argument against the freshly loaded cache.
func lookup(ctx context.Context, env *Env, args []string, out, errOut io.Writer) (model.Task, int) {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: task id required")
		return model.Task{}, ExitUserError
	}
	if !load(ctx, env, errOut) {
		return model.Task{}, ExitBackendError
	}
	t, ok := findTask(env, args[0])
	if !ok {
		fmt.Fprintf(errOut, "error: task not found: %s\n", args[0])
		return model.Task{}, ExitUserError
	}
	return t, ExitSuccess
}

type ListCmd struct {
	done bool
	open bool
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "taskctl list [-done | -open]" }
func (c *ListCmd) NeedsBackend() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.done, "done", false, "")
	fs.BoolVar(&c.open, "open", false, "")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if c.done && c.open {
		fmt.Fprintln(errOut, "error: -done and -open are mutually exclusive")
		return ExitUserError
	}
	if !load(ctx, env, errOut) {
		return finish(env, out, ExitBackendError)
	}

	tasks := env.Store.Tasks()
	if c.done || c.open {
		filtered := make([]model.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.Done == c.done {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	formatTasks(out, tasks)
	return ExitSuccess
}

type AddCmd struct{}

func (c *AddCmd) Name() string                   { return "add" }
func (c *AddCmd) Synopsis() string               { return "Create a task" }
func (c *AddCmd) Usage() string                  { return "taskctl add <text...>" }
func (c *AddCmd) NeedsBackend() bool             { return true }
func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	text, ok := joinText(args)
	if !ok {
		fmt.Fprintln(errOut, "error: text required")
		return ExitUserError
	}
	if !load(ctx, env, errOut) {
		return finish(env, out, ExitBackendError)
	}
	if _, ok := env.Store.Add(ctx, text); !ok {
		env.Toasts.Add("Could not add task", toast.Error)
		return finish(env, out, ExitBackendError)
	}
	env.Toasts.Add("Task added", toast.Success)
	return finish(env, out, ExitSuccess)
}

// setDone backs both done and undo.
func setDone(ctx context.Context, env *Env, args []string, done bool, out, errOut io.Writer) int {
	t, code := lookup(ctx, env, args, out, errOut)
	if code != ExitSuccess {
		return finish(env, out, code)
	}
	if !env.Store.Update(ctx, t.ID, t.Text, done) {
		env.Toasts.Add("Could not update task", toast.Error)
		return finish(env, out, ExitBackendError)
	}
	if done {
		env.Toasts.Add("Task completed", toast.Success)
	} else {
		env.Toasts.Add("Task reopened", toast.Info)
	}
	return finish(env, out, ExitSuccess)
}

type DoneCmd struct{}

func (c *DoneCmd) Name() string                   { return "done" }
func (c *DoneCmd) Synopsis() string               { return "Mark a task completed" }
func (c *DoneCmd) Usage() string                  { return "taskctl done <id>" }
func (c *DoneCmd) NeedsBackend() bool             { return true }
func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return setDone(ctx, env, args, true, out, errOut)
}

type UndoCmd struct{}

func (c *UndoCmd) Name() string                   { return "undo" }
func (c *UndoCmd) Synopsis() string               { return "Mark a task not completed" }
func (c *UndoCmd) Usage() string                  { return "taskctl undo <id>" }
func (c *UndoCmd) NeedsBackend() bool             { return true }
func (c *UndoCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return setDone(ctx, env, args, false, out, errOut)
}

type EditCmd struct{}

func (c *EditCmd) Name() string                   { return "edit" }
func (c *EditCmd) Synopsis() string               { return "Change a task's text" }
func (c *EditCmd) Usage() string                  { return "taskctl edit <id> <text...>" }
func (c *EditCmd) NeedsBackend() bool             { return true }
func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: task id and text required")
		return ExitUserError
	}
	text, ok := joinText(args[1:])
	if !ok {
		fmt.Fprintln(errOut, "error: text required")
		return ExitUserError
	}
	t, code := lookup(ctx, env, args[:1], out, errOut)
	if code != ExitSuccess {
		return finish(env, out, code)
	}
	if !env.Store.Update(ctx, t.ID, text, t.Done) {
		env.Toasts.Add("Could not update task", toast.Error)
		return finish(env, out, ExitBackendError)
	}
	env.Toasts.Add("Task updated", toast.Success)
	return finish(env, out, ExitSuccess)
}

type RmCmd struct{}

func (c *RmCmd) Name() string                   { return "rm" }
func (c *RmCmd) Synopsis() string               { return "Delete a task" }
func (c *RmCmd) Usage() string                  { return "taskctl rm <id>" }
func (c *RmCmd) NeedsBackend() bool             { return true }
func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	t, code := lookup(ctx, env, args, out, errOut)
	if code != ExitSuccess {
		return finish(env, out, code)
	}
	if !env.Store.Delete(ctx, t.ID) {
		env.Toasts.Add("Could not delete task", toast.Error)
		return finish(env, out, ExitBackendError)
	}
	env.Toasts.Add("Task deleted", toast.Success)
	return finish(env, out, ExitSuccess)
}

type ClearCmd struct{}

func (c *ClearCmd) Name() string                   { return "clear" }
func (c *ClearCmd) Synopsis() string               { return "Delete every task" }
func (c *ClearCmd) Usage() string                  { return "taskctl clear" }
func (c *ClearCmd) NeedsBackend() bool             { return true }
func (c *ClearCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ClearCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if !env.Store.ClearAll(ctx) {
		env.Toasts.Add("Could not clear tasks", toast.Error)
		return finish(env, out, ExitBackendError)
	}
	env.Toasts.Add("All tasks cleared", toast.Success)
	return finish(env, out, ExitSuccess)
}

// WatchCmd prints the list and reprints it after every change until ctx
// is canceled.
type WatchCmd struct{}

func (c *WatchCmd) Name() string                   { return "watch" }
func (c *WatchCmd) Synopsis() string               { return "Follow task changes" }
func (c *WatchCmd) Usage() string                  { return "taskctl watch" }
func (c *WatchCmd) NeedsBackend() bool             { return true }
func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WatchCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if !load(ctx, env, errOut) {
		return finish(env, out, ExitBackendError)
	}

	unsubscribe := env.Store.SubscribeTasks(func(tasks []model.Task) {
		fmt.Fprintln(out, "---")
		formatTasks(out, tasks)
	})
	defer unsubscribe()

	stop := env.Store.SubscribeToChanges(ctx, env.Backend)
	<-ctx.Done()
	stop()
	return ExitSuccess
}

// Exporter is implemented by backends that can render the list as a file.
type Exporter interface {
	Export(ctx context.Context, format string) ([]byte, error)
}

type ExportCmd struct {
	format string
}

func (c *ExportCmd) Name() string       { return "export" }
func (c *ExportCmd) Synopsis() string   { return "Write the task list as json, csv or pdf" }
func (c *ExportCmd) Usage() string      { return "taskctl export [-format json|csv|pdf]" }
func (c *ExportCmd) NeedsBackend() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "json", "")
}

func (c *ExportCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	exp, ok := env.Backend.(Exporter)
	if !ok {
		fmt.Fprintln(errOut, "error: backend does not support export")
		return ExitUserError
	}
	switch c.format {
	case "json", "csv", "pdf":
	default:
		fmt.Fprintf(errOut, "error: unknown export format: %s\n", c.format)
		return ExitUserError
	}
	data, err := exp.Export(ctx, c.format)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return ExitBackendError
	}
	_, _ = out.Write(data)
	return ExitSuccess
}

type HelpCmd struct {
	registry *Registry
}

func (c *HelpCmd) Name() string                   { return "help" }
func (c *HelpCmd) Synopsis() string               { return "Show usage" }
func (c *HelpCmd) Usage() string                  { return "taskctl help" }
func (c *HelpCmd) NeedsBackend() bool             { return false }
func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprintln(out, "Usage: taskctl <command> [-server URL] [-toast-ttl D] [-quiet] [-debug] [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, cmd := range c.registry.All() {
		fmt.Fprintf(out, "  %-8s %s\n", cmd.Name(), cmd.Synopsis())
	}
	return ExitSuccess
}
