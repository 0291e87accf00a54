// Package cache provides a small generic TTL cache for collaborator
// responses that are expensive to refetch within a planning session.
package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Metrics tracks cache performance.
type Metrics struct {
	Hits   int64
	Misses int64
	Sets   int64
}

// UnifiedCache is a generic TTL cache.
type UnifiedCache[T any] struct {
	mu      sync.RWMutex
	items   map[string]entry[T]
	ttl     time.Duration
	name    string
	metrics Metrics
	logger  *zap.Logger
}

type entry[T any] struct {
	value      T
	expiration int64
}

// New creates a cache with the given TTL and name. The name only shows
// up in logs.
func New[T any](ttl time.Duration, name string, logger *zap.Logger) *UnifiedCache[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &UnifiedCache[T]{
		items:  make(map[string]entry[T]),
		ttl:    ttl,
		name:   name,
		logger: logger,
	}
	go c.cleanup()
	return c
}

// Set stores an item under key for the cache's TTL.
func (c *UnifiedCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[T]{
		value:      value,
		expiration: time.Now().Add(c.ttl).UnixNano(),
	}
	c.metrics.Sets++
}

// Get retrieves an item; the second return is false on miss or expiry.
func (c *UnifiedCache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, found := c.items[key]
	if !found || time.Now().UnixNano() > item.expiration {
		c.metrics.Misses++
		c.logger.Debug("Cache miss", zap.String("cache", c.name), zap.String("key", key))
		var zero T
		return zero, false
	}

	c.metrics.Hits++
	return item.value, true
}

// Delete removes an item.
func (c *UnifiedCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// GetMetrics returns a snapshot of the cache counters.
func (c *UnifiedCache[T]) GetMetrics() Metrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.metrics
}

// Size returns the number of stored items, expired or not.
func (c *UnifiedCache[T]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// cleanup removes expired items twice per TTL period.
func (c *UnifiedCache[T]) cleanup() {
	ticker := time.NewTicker(c.ttl / 2)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now().UnixNano()
		for key, item := range c.items {
			if now > item.expiration {
				delete(c.items, key)
			}
		}
		c.mu.Unlock()
	}
}
