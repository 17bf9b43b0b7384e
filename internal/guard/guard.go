package guard

import (
	"errors"
	"sync"
)

// ErrInFlight indicates the same action is already being submitted.
var ErrInFlight = errors.New("submission already in progress")

// Guard rejects duplicate submissions of the same action while one is in flight.
type Guard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New constructs an empty Guard.
func New() *Guard {
	return &Guard{inFlight: make(map[string]struct{})}
}

// Acquire marks key as in flight. The returned release function clears the mark and is safe to
// call more than once.
func (g *Guard) Acquire(key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[key]; busy {
		return nil, ErrInFlight
	}
	g.inFlight[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, key)
			g.mu.Unlock()
		})
	}, nil
}

// Do runs fn while holding key.
func (g *Guard) Do(key string, fn func() error) error {
	release, err := g.Acquire(key)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// Busy reports whether key is in flight.
func (g *Guard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inFlight[key]
	return busy
}
