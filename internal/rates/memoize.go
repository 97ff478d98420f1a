package rates

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/rgehrsitz/paygo/internal/domain"
)

// MemoResolver caches lookups per key. Concurrent misses for the same key share a
// single call to the wrapped resolver. Only definitive answers are cached: a set,
// a RateNotFoundError or a ConfigurationError. Timeouts and transport errors are not.
type MemoResolver struct {
	next  Resolver
	group singleflight.Group

	mu    sync.RWMutex
	cache map[Key]resolveResult
}

// Memoize wraps next with a read-through cache
func Memoize(next Resolver) *MemoResolver {
	return &MemoResolver{next: next, cache: make(map[Key]resolveResult)}
}

// Resolve serves key from the cache or joins the shared lookup for it. The shared
// lookup runs detached from any one caller's cancellation, so a caller giving up
// only abandons its own wait. Wrap next with WithTimeout to bound the lookup.
func (m *MemoResolver) Resolve(ctx context.Context, key Key) (*domain.RateSet, error) {
	if res, ok := m.lookup(key); ok {
		return res.rates.Clone(), res.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := m.group.DoChan(cacheKey(key), func() (interface{}, error) {
		rs, err := m.next.Resolve(context.WithoutCancel(ctx), key)
		if err == nil || domain.IsRateNotFound(err) || domain.IsConfiguration(err) {
			m.mu.Lock()
			m.cache[key] = resolveResult{rates: rs, err: err}
			m.mu.Unlock()
		}
		return rs, err
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.RateSet).Clone(), nil
	}
}

func (m *MemoResolver) lookup(key Key) (resolveResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.cache[key]
	return res, ok
}

// Len returns the number of cached keys
func (m *MemoResolver) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cache)
}

// Purge drops every cached entry
func (m *MemoResolver) Purge() {
	m.mu.Lock()
	m.cache = make(map[Key]resolveResult)
	m.mu.Unlock()
}

func cacheKey(key Key) string {
	return key.CompanyID + "|" + key.EffectiveDate.Format("2006-01-02")
}
