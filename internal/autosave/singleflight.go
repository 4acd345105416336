package autosave

import (
	"sync"
)

// SingleFlight runs fn on its own goroutine, never more than one call at a
// time. Values triggered while a call runs share a single pending slot:
// the latest one wins and runs as soon as the current call returns.
type SingleFlight[T any] struct {
	fn func(T)

	mu         sync.Mutex
	running    bool
	hasPending bool
	pending    T
	done       chan struct{}
}

func NewSingleFlight[T any](fn func(T)) *SingleFlight[T] {
	return &SingleFlight[T]{fn: fn}
}

// Trigger starts fn(v) if idle, otherwise queues v behind the running call,
// replacing whatever was queued before.
func (s *SingleFlight[T]) Trigger(v T) {
	s.mu.Lock()
	if s.running {
		s.pending = v
		s.hasPending = true
		s.mu.Unlock()
		return
	}
	s.running = true
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.loop(v)
}

// Busy reports whether a call is running.
func (s *SingleFlight[T]) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Wait blocks until no call is running and nothing is queued.
func (s *SingleFlight[T]) Wait() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	done := s.done
	s.mu.Unlock()
	<-done
}

func (s *SingleFlight[T]) loop(v T) {
	for {
		s.fn(v)

		s.mu.Lock()
		if !s.hasPending {
			s.running = false
			close(s.done)
			s.mu.Unlock()
			return
		}
		v = s.pending
		var zero T
		s.pending = zero
		s.hasPending = false
		s.mu.Unlock()
	}
}
