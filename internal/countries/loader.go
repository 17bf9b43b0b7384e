package countries

import (
	"context"
	"sync"
)

// Loader fetches the country list in the background for a registration form. Each Start takes
// a new generation ticket; results arriving for an older ticket, or after Detach, are dropped.
type Loader struct {
	provider Provider

	mu         sync.Mutex
	generation uint64
	loading    bool
	list       []Country
	err        error
}

// NewLoader constructs a Loader over provider.
func NewLoader(provider Provider) *Loader {
	return &Loader{provider: provider}
}

// Start begins a fetch. The returned channel is closed once the result was applied or dropped.
func (l *Loader) Start(ctx context.Context) <-chan struct{} {
	l.mu.Lock()
	l.generation++
	ticket := l.generation
	l.loading = true
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		list, err := l.provider.List(ctx)

		l.mu.Lock()
		defer l.mu.Unlock()
		if ticket != l.generation {
			return
		}
		l.loading = false
		l.list, l.err = list, err
	}()
	return done
}

// Detach abandons any fetch in flight.
func (l *Loader) Detach() {
	l.mu.Lock()
	l.generation++
	l.loading = false
	l.mu.Unlock()
}

// State returns the loaded list, whether a fetch is in flight and the last fetch error.
func (l *Loader) State() ([]Country, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.list, l.loading, l.err
}

// List serves the prefetched list once it has arrived. While a fetch is in flight, after a
// failed fetch, or before Start, the request goes to the provider directly.
func (l *Loader) List(ctx context.Context) ([]Country, error) {
	list, loading, err := l.State()
	if !loading && err == nil && list != nil {
		return list, nil
	}
	return l.provider.List(ctx)
}
