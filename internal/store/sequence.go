package store

import (
	"sync"
	"time"
)

// Sequence hands out strictly increasing identifiers derived from the wall clock. Two calls
// within the same millisecond still receive distinct values.
type Sequence struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewSequence returns a Sequence driven by time.Now.
func NewSequence() *Sequence {
	return &Sequence{now: time.Now}
}

// Next returns the next identifier.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// Observe records an externally assigned id so later values never collide with it.
func (s *Sequence) Observe(id int64) {
	s.mu.Lock()
	if id > s.last {
		s.last = id
	}
	s.mu.Unlock()
}
