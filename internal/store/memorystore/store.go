package memorystore

import (
	"context"
	"sync"
	"time"

	"tasklist/internal/model"
)

// TaskStore keeps tasks in insertion order. IDs count up from 1 and are
// never reused, like an AUTOINCREMENT column.
type TaskStore struct {
	mu     sync.RWMutex
	tasks  []model.Task
	lastID int64
}

func NewTaskStore() *TaskStore {
	return &TaskStore{}
}

func (s *TaskStore) List(ctx context.Context) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

func (s *TaskStore) Add(ctx context.Context, text string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	now := time.Now().UTC()
	t := model.Task{
		ID:        model.IDFromInt64(s.lastID),
		Text:      text,
		Done:      false,
		CreatedAt: &now,
	}
	s.tasks = append(s.tasks, t)
	return t, nil
}

func (s *TaskStore) Update(ctx context.Context, id model.ID, text string, done bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.tasks[i].Text = text
	s.tasks[i].Done = done
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	return nil
}

func (s *TaskStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = nil
	return nil
}

func (s *TaskStore) Ping(ctx context.Context) error { return nil }

func (s *TaskStore) indexOf(id model.ID) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
