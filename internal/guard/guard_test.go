package guard

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRejectsDuplicates(t *testing.T) {
	g := New()

	release, err := g.Acquire("1:create-post")
	require.NoError(t, err)
	assert.True(t, g.Busy("1:create-post"))

	_, err = g.Acquire("1:create-post")
	assert.ErrorIs(t, err, ErrInFlight)

	other, err := g.Acquire("2:create-post")
	require.NoError(t, err)
	other()

	release()
	release()
	assert.False(t, g.Busy("1:create-post"))
}

func TestDoReleasesOnError(t *testing.T) {
	g := New()
	boom := errors.New("boom")

	err := g.Do("k", func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, g.Busy("k"))
}

func TestConcurrentSubmitsRunOnce(t *testing.T) {
	g := New()
	start := make(chan struct{})
	hold := make(chan struct{})
	var runs, rejected int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := g.Do("k", func() error {
				atomic.AddInt32(&runs, 1)
				<-hold
				return nil
			})
			if errors.Is(err, ErrInFlight) {
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}

	close(start)
	for atomic.LoadInt32(&rejected) < 7 {
		runtime.Gosched()
	}
	close(hold)
	wg.Wait()

	assert.Equal(t, int32(1), runs)
	assert.Equal(t, int32(7), rejected)
}
