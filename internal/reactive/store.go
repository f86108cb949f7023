// Package reactive mirrors the backend task list into observable state.
//
// The cache is a convenience copy, never the source of truth. Every backend
// failure is logged and leaves the cache untouched; observers are not told
// about errors. Concurrent operations complete in arrival order, so two
// overlapping loads resolve as "last response wins".
package reactive

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"tasklist/internal/model"
	"tasklist/internal/observable"
)

// Backend is the task repository the store talks to, local or remote.
type Backend interface {
	List(ctx context.Context) ([]model.Task, error)
	Add(ctx context.Context, text string) (model.Task, error)
	Update(ctx context.Context, id model.ID, text string, done bool) error
	Delete(ctx context.Context, id model.ID) error
	ClearAll(ctx context.Context) error
}

// ChangeFeed delivers backend change notifications until ctx is done.
type ChangeFeed interface {
	Watch(ctx context.Context, fn func(model.Change)) error
}

type Store struct {
	backend Backend
	logger  *slog.Logger

	tasks   *observable.Value[[]model.Task]
	loading *observable.Value[bool]
}

// New returns a store with an empty cache in the loading state: nothing has
// been fetched yet.
func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		logger:  logger,
		tasks:   observable.NewValue([]model.Task{}),
		loading: observable.NewValue(true),
	}
}

// Tasks returns the cached list. Callers must not modify it.
func (s *Store) Tasks() []model.Task { return s.tasks.Get() }

func (s *Store) Loading() bool { return s.loading.Get() }

// SubscribeTasks calls fn with the cached list now and after every change.
// The slice passed to fn is shared and must be treated as read-only.
func (s *Store) SubscribeTasks(fn func([]model.Task)) (unsubscribe func()) {
	return s.tasks.Subscribe(fn)
}

func (s *Store) SubscribeLoading(fn func(bool)) (unsubscribe func()) {
	return s.loading.Subscribe(fn)
}

// Load replaces the cache with the backend's full ordered list. loading is
// true for the duration of the call and false afterwards, even on failure.
func (s *Store) Load(ctx context.Context) bool {
	s.loading.Set(true)
	defer s.loading.Set(false)

	tasks, err := s.backend.List(ctx)
	if err != nil {
		s.logger.Error("load tasks failed", "err", err)
		return false
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	s.tasks.Set(tasks)
	return true
}

// Add creates a task and appends the backend's record to the cache.
func (s *Store) Add(ctx context.Context, text string) (model.Task, bool) {
	created, err := s.backend.Add(ctx, text)
	if err != nil {
		s.logger.Error("add task failed", "err", err)
		return model.Task{}, false
	}
	s.tasks.Update(func(cur []model.Task) []model.Task {
		next := make([]model.Task, 0, len(cur)+1)
		next = append(next, cur...)
		return append(next, created)
	})
	return created, true
}

// Update overwrites text and done of the cached entry once the backend
// accepted the change. An id missing from the cache changes nothing. text is
// trimmed the way the backend stores it.
func (s *Store) Update(ctx context.Context, id model.ID, text string, done bool) bool {
	text = strings.TrimSpace(text)
	if err := s.backend.Update(ctx, id, text, done); err != nil {
		s.logger.Error("update task failed", "id", id, "err", err)
		return false
	}
	s.tasks.Update(func(cur []model.Task) []model.Task {
		next := make([]model.Task, len(cur))
		copy(next, cur)
		for i := range next {
			if next[i].ID == id {
				next[i].Text = text
				next[i].Done = done
			}
		}
		return next
	})
	return true
}

func (s *Store) Delete(ctx context.Context, id model.ID) bool {
	if err := s.backend.Delete(ctx, id); err != nil {
		s.logger.Error("delete task failed", "id", id, "err", err)
		return false
	}
	s.tasks.Update(func(cur []model.Task) []model.Task {
		next := make([]model.Task, 0, len(cur))
		for _, t := range cur {
			if t.ID != id {
				next = append(next, t)
			}
		}
		return next
	})
	return true
}

func (s *Store) ClearAll(ctx context.Context) bool {
	if err := s.backend.ClearAll(ctx); err != nil {
		s.logger.Error("clear tasks failed", "err", err)
		return false
	}
	s.tasks.Set([]model.Task{})
	return true
}

// SubscribeToChanges reloads the whole list on every notification from
// feed. A full resync is used instead of applying the change, so the cache
// cannot drift from the backend through missed or reordered events. The
// returned stop function cancels the subscription and waits for it.
func (s *Store) SubscribeToChanges(ctx context.Context, feed ChangeFeed) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := feed.Watch(ctx, func(c model.Change) {
			s.logger.Debug("realtime update", "op", c.Op, "id", c.ID)
			s.Load(ctx)
		})
		if err != nil && ctx.Err() == nil {
			s.logger.Error("change feed stopped", "err", err)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
}

// Reset restores the freshly constructed state.
func (s *Store) Reset() {
	s.tasks.Set([]model.Task{})
	s.loading.Set(true)
}
