package realtime

import (
	"context"
	"log/slog"
	"sync"

	"tasklist/internal/model"
)

// Hub fans changes out to every current subscriber. Publish never blocks:
// a subscriber whose buffer is full misses the change, which is harmless
// for consumers that resync the whole list on any notification.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]chan model.Change
	next   uint64
	buffer int
	closed bool
	logger *slog.Logger
}

func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[uint64]chan model.Change),
		buffer: buffer,
		logger: logger,
	}
}

func (h *Hub) Publish(c model.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		select {
		case ch <- c:
		default:
			h.logger.Warn("change dropped for slow subscriber", "sub", id, "op", c.Op)
		}
	}
}

// Subscribe registers a channel subscriber. The channel is closed by
// cancel or by Close.
func (h *Hub) Subscribe() (<-chan model.Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan model.Change, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.next
	h.next++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Watch calls fn for every change until ctx is done or the hub closes.
func (h *Hub) Watch(ctx context.Context, fn func(model.Change)) error {
	ch, cancel := h.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-ch:
			if !ok {
				return nil
			}
			fn(c)
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
