// Package fetch binds cache keys to fetch functions in the
// stale-while-revalidate style: results are cached per key, concurrent
// fetches of one key share a single call, and queries report lifecycle
// events that callers turn into notifications.
package fetch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultDedupingInterval is how long a successful result is served without
// calling the fetcher again
const DefaultDedupingInterval = 2 * time.Second

type entry struct {
	data      any
	err       error
	hasData   bool
	fetchedAt time.Time
}

// Cache is shared by every Query that should deduplicate with the others.
// Safe for concurrent use.
type Cache struct {
	group singleflight.Group

	mutex   sync.RWMutex
	entries map[string]entry

	dedupingInterval time.Duration
	now              func() time.Time
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithDedupingInterval overrides DefaultDedupingInterval. Zero disables
// time-based deduping; in-flight calls are still shared.
func WithDedupingInterval(d time.Duration) CacheOption {
	return func(c *Cache) { c.dedupingInterval = d }
}

func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries:          make(map[string]entry),
		dedupingInterval: DefaultDedupingInterval,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached data for key
func (c *Cache) Get(key string) (any, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	e, ok := c.entries[key]
	if !ok || !e.hasData {
		return nil, false
	}
	return e.data, true
}

// Mutate replaces the cached data for key
func (c *Cache) Mutate(key string, data any) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[key] = entry{data: data, hasData: true, fetchedAt: c.now()}
}

// Invalidate drops key so the next fetch calls the fetcher
func (c *Cache) Invalidate(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, key)
}

// fetch returns fresh cached data, joins an in-flight call for key, or
// calls fn. force skips the freshness check but still joins in-flight calls.
// A failed call keeps the previously cached data.
func (c *Cache) fetch(ctx context.Context, key string, fn func(context.Context) (any, error), force bool) (any, error) {
	if !force {
		c.mutex.RLock()
		e, ok := c.entries[key]
		c.mutex.RUnlock()
		if ok && e.hasData && e.err == nil && c.now().Sub(e.fetchedAt) < c.dedupingInterval {
			return e.data, nil
		}
	}

	data, err, _ := c.group.Do(key, func() (any, error) {
		data, err := fn(ctx)

		c.mutex.Lock()
		defer c.mutex.Unlock()
		if err != nil {
			e := c.entries[key]
			e.err = err
			c.entries[key] = e
			return nil, err
		}
		c.entries[key] = entry{data: data, hasData: true, fetchedAt: c.now()}
		return data, nil
	})
	return data, err
}
