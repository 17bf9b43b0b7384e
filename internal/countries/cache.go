package countries

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/unera/backend/internal/logging"
)

// CachingProvider wraps another Provider with a TTL-based in-memory cache. Concurrent misses
// share a single upstream request.
type CachingProvider struct {
	base Provider
	ttl  time.Duration
	now  func() time.Time

	group singleflight.Group

	mu      sync.RWMutex
	list    []Country
	expires time.Time
}

// NewCachingProvider returns a Provider that caches the list for the provided TTL.
func NewCachingProvider(base Provider, ttl time.Duration) *CachingProvider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachingProvider{base: base, ttl: ttl, now: time.Now}
}

// List returns the cached list when fresh, otherwise it delegates to the underlying provider
// and stores the result.
func (c *CachingProvider) List(ctx context.Context) ([]Country, error) {
	if c == nil || c.base == nil {
		return nil, ErrProviderUnavailable
	}

	now := c.now()
	c.mu.RLock()
	list, expires := c.list, c.expires
	c.mu.RUnlock()
	if list != nil && now.Before(expires) {
		return list, nil
	}

	v, err, _ := c.group.Do("countries", func() (any, error) {
		fetched, err := c.base.List(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.list = fetched
		c.expires = c.now().Add(c.ttl)
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Country), nil
}

// FallbackProvider serves a static list whenever the primary provider fails.
type FallbackProvider struct {
	primary  Provider
	fallback []Country
}

// NewFallbackProvider wraps primary. A nil fallback uses Fallback().
func NewFallbackProvider(primary Provider, fallback []Country) *FallbackProvider {
	if fallback == nil {
		fallback = Fallback()
	}
	return &FallbackProvider{primary: primary, fallback: fallback}
}

// List never fails: upstream errors are logged and the fallback list is returned.
func (f *FallbackProvider) List(ctx context.Context) ([]Country, error) {
	if f.primary != nil {
		list, err := f.primary.List(ctx)
		if err == nil && len(list) > 0 {
			return list, nil
		}
		if err != nil {
			logging.FromContext(ctx).Warn("country list unavailable, serving fallback", slog.Any("error", err))
		}
	}
	out := make([]Country, len(f.fallback))
	copy(out, f.fallback)
	return out, nil
}

var (
	_ Provider = (*HTTPProvider)(nil)
	_ Provider = (*CachingProvider)(nil)
	_ Provider = (*FallbackProvider)(nil)
)
