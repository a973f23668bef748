package warfish

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// cacheStore is a process-wide keyed cache with at-most-once population:
// the first successful fetch for a key is latched and returned to every
// later caller, and concurrent fetches for the same key are coalesced into
// a single upstream request. Failed fetches latch nothing, so the next
// caller retries. Cleared only on process restart.
type cacheStore[K comparable, V any] struct {
	mu     sync.RWMutex
	values map[K]V
	group  singleflight.Group
}

func newCacheStore[K comparable, V any]() *cacheStore[K, V] {
	return &cacheStore[K, V]{values: map[K]V{}}
}

func (c *cacheStore[K, V]) get(key K, fetch func() (V, error)) (V, error) {
	c.mu.RLock()
	v, ok := c.values[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	res, err, _ := c.group.Do(fmt.Sprint(key), func() (any, error) {
		// a coalesced waiter may arrive after the winner stored the value
		c.mu.RLock()
		v, ok := c.values[key]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}

		fetched, err := fetch()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.values[key] = fetched
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}
