// Package cache provides a generic TTL cache for upstream feed snapshots
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Cache is a thread-safe TTL cache. Concurrent misses on the same key share
// one load.
type Cache[T any] struct {
	mu       sync.Mutex
	items    map[string]entry[T]
	inflight map[string]*call[T]
	ttl      time.Duration
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

type call[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// New creates a cache with the specified TTL and starts expiry sweeping
func New[T any](ttl time.Duration) *Cache[T] {
	c := &Cache[T]{
		items:    make(map[string]entry[T]),
		inflight: make(map[string]*call[T]),
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go c.sweep()
	return c
}

// Get returns the value for key if present and unexpired
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *Cache[T]) getLocked(key string) (T, bool) {
	e, ok := c.items[key]
	if !ok || !c.now().Before(e.expiresAt) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores a value with the cache's TTL
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value)
}

func (c *Cache[T]) setLocked(key string, value T) {
	c.items[key] = entry[T]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// GetOrLoad returns the cached value or calls load to fill it. Errors are
// not cached.
func (c *Cache[T]) GetOrLoad(key string, load func() (T, error)) (T, error) {
	c.mu.Lock()
	if v, ok := c.getLocked(key); ok {
		c.mu.Unlock()
		return v, nil
	}
	if inflight, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-inflight.done
		return inflight.value, inflight.err
	}
	pending := &call[T]{done: make(chan struct{})}
	c.inflight[key] = pending
	c.mu.Unlock()

	pending.value, pending.err = load()

	c.mu.Lock()
	delete(c.inflight, key)
	if pending.err == nil {
		c.setLocked(key, pending.value)
	}
	c.mu.Unlock()
	close(pending.done)

	return pending.value, pending.err
}

// Close stops the background sweeper. It is safe to call more than once.
func (c *Cache[T]) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache[T]) sweep() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache[T]) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.items {
		if !now.Before(e.expiresAt) {
			delete(c.items, key)
		}
	}
}
