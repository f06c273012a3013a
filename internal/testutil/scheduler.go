package testutil

import (
	"sync"
	"time"
)

// ManualScheduler captures scheduled callbacks and runs them only when the
// test calls Fire. It never spawns timers.
type ManualScheduler struct {
	mu      sync.Mutex
	pending map[int64]func()
	delays  map[int64]time.Duration
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{
		pending: make(map[int64]func()),
		delays:  make(map[int64]time.Duration),
	}
}

func (s *ManualScheduler) Schedule(key int64, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[key] = fn
	s.delays[key] = d
}

func (s *ManualScheduler) Cancel(key int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, key)
	delete(s.delays, key)
}

// Fire runs and clears the callback for key. Returns false if nothing is
// scheduled under that key.
func (s *ManualScheduler) Fire(key int64) bool {
	s.mu.Lock()
	fn, ok := s.pending[key]
	delete(s.pending, key)
	delete(s.delays, key)
	s.mu.Unlock()

	if !ok {
		return false
	}
	fn()
	return true
}

// Pending reports whether a callback is scheduled under key.
func (s *ManualScheduler) Pending(key int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

// Delay returns the duration the callback under key was scheduled with.
func (s *ManualScheduler) Delay(key int64) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delays[key]
}
