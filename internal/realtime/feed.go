// Package realtime fans out change events to subscribers inside the process.
package realtime

import "sync"

// Feed delivers published values to every current subscriber.
// Subscribers own their subscription and must call the returned unsubscribe
// function when done; nothing is cleaned up implicitly.
type Feed[T any] struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]func(T)
}

// NewFeed creates an empty feed.
func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{subs: make(map[uint64]func(T))}
}

// Subscribe registers onChange and returns a function that removes it.
// Calling unsubscribe more than once is a no-op.
func (f *Feed[T]) Subscribe(onChange func(T)) (unsubscribe func()) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = onChange
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

// Publish calls every subscriber synchronously with v.
// Subscribers must not block; use Channel for slow consumers.
func (f *Feed[T]) Publish(v T) {
	f.mu.RLock()
	handlers := make([]func(T), 0, len(f.subs))
	for _, h := range f.subs {
		handlers = append(handlers, h)
	}
	f.mu.RUnlock()

	for _, h := range handlers {
		h(v)
	}
}

// Len returns the number of active subscribers.
func (f *Feed[T]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Channel subscribes with a buffered channel. When the buffer is full the
// value is dropped for this subscriber rather than blocking Publish.
// The channel is closed by unsubscribe.
func (f *Feed[T]) Channel(buffer int) (<-chan T, func()) {
	ch := make(chan T, buffer)
	var mu sync.Mutex
	closed := false

	unsub := f.Subscribe(func(v T) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- v:
		default:
		}
	})

	return ch, func() {
		unsub()
		mu.Lock()
		if !closed {
			closed = true
			close(ch)
		}
		mu.Unlock()
	}
}
