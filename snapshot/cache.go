// Package snapshot assembles the dashboard snapshot from a storage source and
// memoizes derived results for a short freshness window.
package snapshot

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a built artifact is served before it is rebuilt.
const DefaultTTL = 30 * time.Second

type entry[T any] struct {
	value   T
	builtAt time.Time
}

// Cache keeps at most one artifact per key. Reads within ttl of the build
// return the stored value; anything older is rebuilt and overwritten.
// Concurrent misses on the same key share one build.
//
// Callers should use a small fixed set of keys; entries are never evicted.
type Cache[T any] struct {
	ttl   time.Duration
	clock func() time.Time

	mu      sync.Mutex
	entries map[string]entry[T]
	flight  singleflight.Group
}

// NewCache returns a cache with the given freshness window. A nil clock uses
// time.Now; a non-positive ttl uses DefaultTTL.
func NewCache[T any](ttl time.Duration, clock func() time.Time) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &Cache[T]{ttl: ttl, clock: clock, entries: make(map[string]entry[T])}
}

// Get returns the fresh artifact for key, calling build when it is missing or
// stale. Build errors are returned as-is and leave any previous entry in place.
func (c *Cache[T]) Get(ctx context.Context, key string, build func(context.Context) (T, error)) (T, error) {
	if v, ok := c.fresh(key); ok {
		return v, nil
	}
	v, err, _ := c.flight.Do(key, func() (any, error) {
		if v, ok := c.fresh(key); ok {
			return v, nil
		}
		v, err := build(ctx)
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		c.entries[key] = entry[T]{value: v, builtAt: c.clock()}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Peek returns the stored artifact and its build time regardless of age.
func (c *Cache[T]) Peek(key string) (T, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.value, e.builtAt, ok
}

// Invalidate drops key so the next Get rebuilds it. With no keys it drops
// every entry.
func (c *Cache[T]) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(keys) == 0 {
		c.entries = make(map[string]entry[T])
		return
	}
	for _, k := range keys {
		delete(c.entries, k)
	}
}

func (c *Cache[T]) fresh(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.clock().Sub(e.builtAt) >= c.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}
