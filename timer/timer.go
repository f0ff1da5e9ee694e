// timer/timer.go
package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler runs one-shot and repeating callbacks against an injected clock,
// so tests can drive time with a clockwork fake.
type Scheduler struct {
	clock clockwork.Clock
}

func NewScheduler(clock clockwork.Clock) *Scheduler {
	return &Scheduler{clock: clock}
}

func (s *Scheduler) Clock() clockwork.Clock {
	return s.clock
}

// Handle is a cancellable pending callback.
type Handle struct {
	stopped chan struct{}
	cleanup func()
	once    sync.Once
}

// Stop cancels the pending callback. Safe to call more than once; a callback
// that already started is not interrupted.
func (h *Handle) Stop() {
	h.once.Do(func() {
		close(h.stopped)
		if h.cleanup != nil {
			h.cleanup()
		}
	})
}

// After schedules fn to run once after d. The callback runs on its own
// goroutine; callers needing mutual exclusion must lock inside fn.
func (s *Scheduler) After(d time.Duration, fn func()) *Handle {
	t := s.clock.NewTimer(d)
	h := &Handle{
		stopped: make(chan struct{}),
		cleanup: func() {
			if !t.Stop() {
				// Already fired; drain so the timer goroutine can exit.
				select {
				case <-t.Chan():
				default:
				}
			}
		},
	}
	go func() {
		select {
		case <-t.Chan():
			fn()
		case <-h.stopped:
		}
	}()
	return h
}

// Every schedules fn on a fixed interval until the returned Handle is
// stopped.
func (s *Scheduler) Every(interval time.Duration, fn func()) *Handle {
	ticker := s.clock.NewTicker(interval)
	h := &Handle{stopped: make(chan struct{})}
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				fn()
			case <-h.stopped:
				return
			}
		}
	}()
	return h
}
