// Package observable provides a writable value that pushes every change to
// its subscribers.
package observable

import "sync"

// Value holds a T and notifies subscribers when it changes. Subscribers are
// called one at a time and always end up seeing the latest value, though a
// burst of writes may be coalesced into a single delivery.
//
// Callbacks must not call Set or Update on the same Value.
type Value[T any] struct {
	mu        sync.Mutex
	v         T
	version   uint64
	delivered uint64
	subs      map[uint64]func(T)
	nextSub   uint64

	deliverMu sync.Mutex
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial, subs: make(map[uint64]func(T))}
}

func (o *Value[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.v
}

func (o *Value[T]) Set(v T) {
	o.Update(func(T) T { return v })
}

// Update replaces the value with fn(current) atomically.
func (o *Value[T]) Update(fn func(T) T) {
	o.mu.Lock()
	o.v = fn(o.v)
	o.version++
	o.mu.Unlock()

	o.deliver()
}

// Subscribe calls fn with the current value right away and again after
// every change until the returned function is called.
func (o *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	o.deliverMu.Lock()
	o.mu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = fn
	v := o.v
	o.mu.Unlock()
	fn(v)
	o.deliverMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
		})
	}
}

func (o *Value[T]) deliver() {
	o.deliverMu.Lock()
	defer o.deliverMu.Unlock()

	o.mu.Lock()
	if o.delivered == o.version {
		o.mu.Unlock()
		return
	}
	v := o.v
	o.delivered = o.version
	subs := make([]func(T), 0, len(o.subs))
	for _, fn := range o.subs {
		subs = append(subs, fn)
	}
	o.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}
