package task

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"tasklist/internal/model"
	"tasklist/internal/store/memorystore"
)

type recordingPublisher struct {
	mu      sync.Mutex
	changes []model.Change
}

func (p *recordingPublisher) Publish(c model.Change) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, c)
}

func (p *recordingPublisher) ops() []model.ChangeOp {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.ChangeOp, 0, len(p.changes))
	for _, c := range p.changes {
		out = append(out, c.Op)
	}
	return out
}

type failingRepo struct{ err error }

func (r failingRepo) List(ctx context.Context) ([]model.Task, error) { return nil, r.err }
func (r failingRepo) Add(ctx context.Context, text string) (model.Task, error) {
	return model.Task{}, r.err
}
func (r failingRepo) Update(ctx context.Context, id model.ID, text string, done bool) error {
	return r.err
}
func (r failingRepo) Delete(ctx context.Context, id model.ID) error { return r.err }
func (r failingRepo) ClearAll(ctx context.Context) error            { return r.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestService_AddTrimsAndStartsUndone(t *testing.T) {
	svc := NewService(memorystore.NewTaskStore(), nil, discardLogger())

	created, err := svc.Add(context.Background(), "  buy milk ")
	if err != nil {
		t.Fatal(err)
	}
	if created.Text != "buy milk" || created.Done {
		t.Fatalf("created=%+v", created)
	}
}

func TestService_RejectsEmptyText(t *testing.T) {
	svc := NewService(memorystore.NewTaskStore(), nil, discardLogger())
	ctx := context.Background()

	if _, err := svc.Add(ctx, "   "); !errors.Is(err, ErrInvalidText) {
		t.Fatalf("add err=%v", err)
	}
	if err := svc.Update(ctx, "1", "", true); !errors.Is(err, ErrInvalidText) {
		t.Fatalf("update err=%v", err)
	}
}

func TestService_UniqueIDs(t *testing.T) {
	svc := NewService(memorystore.NewTaskStore(), nil, discardLogger())
	ctx := context.Background()

	seen := map[model.ID]bool{}
	for i := 0; i < 20; i++ {
		created, err := svc.Add(ctx, "task")
		if err != nil {
			t.Fatal(err)
		}
		if seen[created.ID] {
			t.Fatalf("duplicate id %s", created.ID)
		}
		seen[created.ID] = true
	}
}

func TestService_UpdateUnknownLeavesCollection(t *testing.T) {
	svc := NewService(memorystore.NewTaskStore(), nil, discardLogger())
	ctx := context.Background()
	_, _ = svc.Add(ctx, "only")

	if err := svc.Update(ctx, "404", "ghost", true); err != nil {
		t.Fatalf("err=%v", err)
	}
	tasks, _ := svc.List(ctx)
	if len(tasks) != 1 || tasks[0].Text != "only" || tasks[0].Done {
		t.Fatalf("tasks=%+v", tasks)
	}
}

func TestService_ListNeverNil(t *testing.T) {
	svc := NewService(memorystore.NewTaskStore(), nil, discardLogger())
	tasks, err := svc.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tasks == nil {
		t.Fatalf("expected empty slice, got nil")
	}
}

func TestService_PublishesChanges(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewService(memorystore.NewTaskStore(), pub, discardLogger())
	ctx := context.Background()

	created, _ := svc.Add(ctx, "a")
	_ = svc.Update(ctx, created.ID, "a", true)
	_ = svc.Delete(ctx, created.ID)
	_ = svc.ClearAll(ctx)

	got := pub.ops()
	want := []model.ChangeOp{model.ChangeInsert, model.ChangeUpdate, model.ChangeDelete, model.ChangeClear}
	if len(got) != len(want) {
		t.Fatalf("ops=%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ops=%v want %v", got, want)
		}
	}
	if pub.changes[0].ID != created.ID {
		t.Fatalf("insert change id=%s", pub.changes[0].ID)
	}
}

func TestService_BackendErrorsAreWrappedAndLogged(t *testing.T) {
	var logs bytes.Buffer
	pub := &recordingPublisher{}
	cause := errors.New("connection refused")
	svc := NewService(failingRepo{err: cause}, pub, slog.New(slog.NewTextHandler(&logs, nil)))
	ctx := context.Background()

	_, err := svc.List(ctx)
	var be *BackendError
	if !errors.As(err, &be) || be.Op != "list" {
		t.Fatalf("err=%v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}

	if _, err := svc.Add(ctx, "x"); !errors.As(err, &be) {
		t.Fatalf("add err=%v", err)
	}
	if err := svc.ClearAll(ctx); !errors.As(err, &be) {
		t.Fatalf("clear err=%v", err)
	}

	if len(pub.ops()) != 0 {
		t.Fatalf("failed mutations must not publish: %v", pub.ops())
	}
	if !strings.Contains(logs.String(), "connection refused") {
		t.Fatalf("expected error to be logged, got %q", logs.String())
	}
}
