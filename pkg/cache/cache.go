// Package cache is a small in-memory TTL cache. Market metadata changes
// slowly relative to how often it is read, so single-market lookups are
// cached briefly to spare the upstream.
package cache

import (
	"sync"
	"time"
)

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a concurrency-safe map with per-entry expiry. Expired entries are
// dropped lazily on Get and swept periodically.
type TTL[K comparable, V any] struct {
	items      map[K]item[V]
	mu         sync.RWMutex
	defaultTTL time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
}

func NewTTL[K comparable, V any](defaultTTL time.Duration) *TTL[K, V] {
	c := &TTL[K, V]{
		items:      make(map[K]item[V]),
		defaultTTL: defaultTTL,
		stop:       make(chan struct{}),
	}
	go c.sweep()
	return c
}

func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	if time.Now().After(it.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return it.value, true
}

// Set stores value under key. ttl <= 0 uses the cache default.
func (c *TTL[K, V]) Set(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	c.items[key] = item[V]{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *TTL[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the background sweeper.
func (c *TTL[K, V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *TTL[K, V]) sweep() {
	interval := c.defaultTTL
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			now := time.Now()
			c.mu.Lock()
			for k, it := range c.items {
				if now.After(it.expiresAt) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		}
	}
}
