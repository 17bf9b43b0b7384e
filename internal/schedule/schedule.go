package schedule

import (
	"sync"
	"time"
)

// Scheduler runs delayed actions keyed by name. Scheduling under a key that already has a
// pending action cancels that action first, and a cancelled action never runs.
type Scheduler struct {
	mu      sync.Mutex
	pending map[string]*entry
	stopped bool
	after   func(time.Duration, func()) timer
}

type timer interface {
	Stop() bool
}

type entry struct {
	t         timer
	cancelled bool
}

// New constructs an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{
		pending: make(map[string]*entry),
		after: func(d time.Duration, fn func()) timer {
			return time.AfterFunc(d, fn)
		},
	}
}

// Schedule arranges for fn to run after delay under key. It reports false when the scheduler
// has been stopped.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	if prev, ok := s.pending[key]; ok {
		prev.cancelled = true
		prev.t.Stop()
	}

	e := &entry{}
	e.t = s.after(delay, func() {
		s.mu.Lock()
		if e.cancelled || s.pending[key] != e {
			s.mu.Unlock()
			return
		}
		delete(s.pending, key)
		s.mu.Unlock()
		fn()
	})
	s.pending[key] = e
	return true
}

// Cancel drops the pending action under key. It reports whether one was pending.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.pending[key]
	if !ok {
		return false
	}
	e.cancelled = true
	e.t.Stop()
	delete(s.pending, key)
	return true
}

// Pending reports whether an action is waiting under key.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

// CancelAll drops every pending action but keeps the scheduler usable.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelAllLocked()
}

// Stop cancels every pending action and rejects further scheduling.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.cancelAllLocked()
}

func (s *Scheduler) cancelAllLocked() {
	for key, e := range s.pending {
		e.cancelled = true
		e.t.Stop()
		delete(s.pending, key)
	}
}
