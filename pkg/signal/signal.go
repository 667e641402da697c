// Package signal provides the minimal publish/subscribe primitive the stores
// use to expose observable state. Writers notify after each atomic mutation;
// readers register callbacks and unsubscribe when torn down.
package signal

import "sync"

// Signal is a broadcast point for values of type T. The zero value is ready
// to use. Callbacks run synchronously on the emitting goroutine, so
// subscribers must not block.
type Signal[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]func(T)
}

// Subscribe registers a callback and returns a function that removes it.
// Unsubscribing twice is harmless.
func (s *Signal[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func(T))
	}
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Emit delivers v to every current subscriber.
func (s *Signal[T]) Emit(v T) {
	s.mu.Lock()
	fns := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the current subscriber count.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
