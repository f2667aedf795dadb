// SPDX-License-Identifier: MIT

// Package cache provides TTL caching for board snapshots and other derived
// read models. The board is recomputed from the order store on a miss, so a
// lost entry is never more than a little extra work.
package cache

import (
	"sync"
	"time"
)

// Cache is a thread-safe key/value store with per-entry expiration.
type Cache interface {
	// Get returns the cached value, or false when absent or expired.
	Get(key string) (any, bool)
	// Set stores value under key for the given TTL.
	Set(key string, value any, ttl time.Duration)
	// Delete removes key.
	Delete(key string)
	// Clear removes every entry.
	Clear()
	// Stats reports hit/miss counters.
	Stats() Stats
}

// Stats holds cache counters for diagnostics.
type Stats struct {
	Hits        int64
	Misses      int64
	Sets        int64
	Evictions   int64
	CurrentSize int
}

type entry struct {
	value     any
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryCache is the in-process backend. Obtain one via NewMemoryCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	stats   Stats
	janitor *janitor
}

// NewMemoryCache returns an in-process cache. When sweepInterval > 0 a
// background goroutine evicts expired entries; call Stop to end it.
func NewMemoryCache(sweepInterval time.Duration) *MemoryCache {
	c := &MemoryCache{entries: make(map[string]*entry)}
	if sweepInterval > 0 {
		c.janitor = &janitor{interval: sweepInterval, stop: make(chan struct{})}
		go c.janitor.run(c)
	}
	return c
}

func (c *MemoryCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return e.value, true
}

func (c *MemoryCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{value: value, expiresAt: time.Now().Add(ttl)}
	c.stats.Sets++
}

func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

func (c *MemoryCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := c.stats
	stats.CurrentSize = len(c.entries)
	return stats
}

func (c *MemoryCache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	c.stats.Evictions += int64(removed)
	return removed
}

// Stop ends the background sweep goroutine, if one was started.
func (c *MemoryCache) Stop() {
	if c.janitor != nil {
		close(c.janitor.stop)
	}
}

type janitor struct {
	interval time.Duration
	stop     chan struct{}
}

func (j *janitor) run(c *MemoryCache) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-j.stop:
			return
		}
	}
}

type noopCache struct{}

// NewNoopCache returns a cache that stores nothing. Used when board caching
// is disabled in the configuration.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(string) (any, bool)         { return nil, false }
func (noopCache) Set(string, any, time.Duration) {}
func (noopCache) Delete(string)                  {}
func (noopCache) Clear()                         {}
func (noopCache) Stats() Stats                   { return Stats{} }
