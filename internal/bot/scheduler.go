package bot

import (
	"sync"
	"time"
)

// Scheduler runs a function once after a delay, keyed by chat id. Scheduling
// a new task for a key replaces (and cancels) any outstanding one, and a
// session reset cancels the key outright, so a stale timer can never mutate
// a reused chat's state.
type Scheduler interface {
	Schedule(key int64, d time.Duration, fn func())
	Cancel(key int64)
}

// TimerScheduler is the production Scheduler, backed by time.AfterFunc.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[int64]*time.Timer
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[int64]*time.Timer)}
}

func (s *TimerScheduler) Schedule(key int64, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
		fn()
	})
}

func (s *TimerScheduler) Cancel(key int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}
