// Package toast keeps short-lived user notifications.
package toast

import (
	"sync"
	"time"

	"tasklist/internal/ids"
	"tasklist/internal/observable"
)

const DefaultTTL = 3 * time.Second

type Kind string

const (
	Info    Kind = "info"
	Success Kind = "success"
	Warning Kind = "warning"
	Error   Kind = "error"
)

type Toast struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Kind    Kind   `json:"type"`
}

// Store holds the visible toasts. Each one is removed automatically once
// its TTL elapses, whatever else happened in the meantime.
type Store struct {
	ttl    time.Duration
	newID  func() string
	toasts *observable.Value[[]Toast]

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:    ttl,
		newID:  ids.NewID,
		toasts: observable.NewValue([]Toast{}),
		timers: make(map[string]*time.Timer),
	}
}

// Add shows a toast for the store's TTL. An empty kind means Info.
func (s *Store) Add(message string, kind Kind) Toast {
	return s.AddFor(message, kind, s.ttl)
}

func (s *Store) AddFor(message string, kind Kind, ttl time.Duration) Toast {
	if kind == "" {
		kind = Info
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	t := Toast{ID: s.newID(), Message: message, Kind: kind}

	s.toasts.Update(func(cur []Toast) []Toast {
		next := make([]Toast, 0, len(cur)+1)
		next = append(next, cur...)
		return append(next, t)
	})

	s.mu.Lock()
	if !s.closed {
		s.timers[t.ID] = time.AfterFunc(ttl, func() { s.expire(t.ID) })
	}
	s.mu.Unlock()
	return t
}

// Remove drops the toast with id; unknown ids are ignored.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.drop(id)
}

func (s *Store) List() []Toast { return s.toasts.Get() }

// Subscribe calls fn with the visible toasts now and after every change.
func (s *Store) Subscribe(fn func([]Toast)) (unsubscribe func()) {
	return s.toasts.Subscribe(fn)
}

// Close cancels every pending expiry. Toasts already shown stay listed.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

func (s *Store) expire(id string) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()
	s.drop(id)
}

func (s *Store) drop(id string) {
	s.toasts.Update(func(cur []Toast) []Toast {
		next := make([]Toast, 0, len(cur))
		for _, t := range cur {
			if t.ID != id {
				next = append(next, t)
			}
		}
		return next
	})
}
