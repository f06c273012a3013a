package bot

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerScheduler(t *testing.T) {
	t.Run("fires after delay", func(t *testing.T) {
		s := NewTimerScheduler()
		done := make(chan struct{})
		s.Schedule(1, time.Millisecond, func() { close(done) })

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("scheduled function never fired")
		}
	})

	t.Run("cancel prevents firing", func(t *testing.T) {
		s := NewTimerScheduler()
		var fired atomic.Bool
		s.Schedule(1, 10*time.Millisecond, func() { fired.Store(true) })
		s.Cancel(1)

		time.Sleep(50 * time.Millisecond)
		if fired.Load() {
			t.Error("cancelled function fired")
		}
	})

	t.Run("reschedule replaces pending task", func(t *testing.T) {
		s := NewTimerScheduler()
		var first, second atomic.Bool
		s.Schedule(1, 10*time.Millisecond, func() { first.Store(true) })
		s.Schedule(1, time.Millisecond, func() { second.Store(true) })

		time.Sleep(50 * time.Millisecond)
		if first.Load() {
			t.Error("replaced function fired")
		}
		if !second.Load() {
			t.Error("replacement function never fired")
		}
	})

	t.Run("cancel of unknown key is a no-op", func(t *testing.T) {
		s := NewTimerScheduler()
		s.Cancel(99)
	})
}
