// SPDX-License-Identifier: MIT

// Package cache provides byte-oriented caches with TTL support.
package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Cache provides thread-safe caching with expiration support.
// Values are opaque bytes; callers own the encoding.
type Cache interface {
	// Get retrieves a value. The bool is false if not found or expired.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores a value with the specified TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Delete removes a value.
	Delete(ctx context.Context, key string)
	// Clear removes all values owned by this cache.
	Clear(ctx context.Context)
	// Stats returns cache statistics.
	Stats() CacheStats
	// HealthCheck reports whether the cache backend is reachable.
	HealthCheck(ctx context.Context) error
	// Close releases background resources.
	Close() error
}

// CacheStats holds cache performance metrics.
type CacheStats struct {
	Hits        int64 // Number of successful Get operations
	Misses      int64 // Number of failed Get operations (not found or expired)
	Sets        int64 // Number of Set operations
	Evictions   int64 // Number of expired entries cleaned up
	CurrentSize int   // Current number of cached entries
}

// Backend names accepted by New.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and configures a cache backend.
type Config struct {
	Backend         string
	CleanupInterval time.Duration
	Redis           RedisConfig
}

// New builds the cache selected by cfg.Backend.
func New(cfg Config, logger zerolog.Logger) (Cache, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return NewNoOpCache(), nil
	case BackendMemory:
		return NewMemoryCache(cfg.CleanupInterval), nil
	case BackendRedis:
		rc, err := NewRedisCache(cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %q", cfg.Backend)
	}
}

// entry represents a cached value with expiration time.
type entry struct {
	value      []byte
	expiration time.Time
}

func (e *entry) isExpired(now time.Time) bool {
	return now.After(e.expiration)
}

// memoryCache is an in-memory implementation of Cache.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	janitor *janitor
	now     func() time.Time

	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
}

// NewMemoryCache creates a new in-memory cache with automatic cleanup.
// The cleanupInterval determines how often expired entries are removed;
// zero disables the janitor.
func NewMemoryCache(cleanupInterval time.Duration) Cache {
	c := &memoryCache{
		entries: make(map[string]*entry),
		now:     time.Now,
	}

	if cleanupInterval > 0 {
		c.janitor = &janitor{
			interval: cleanupInterval,
			stop:     make(chan struct{}),
			done:     make(chan struct{}),
		}
		go c.janitor.run(c)
	}

	return c
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if !found || e.isExpired(c.now()) {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return append([]byte(nil), e.value...), true
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{
		value:      append([]byte(nil), value...),
		expiration: c.now().Add(ttl),
	}
	c.sets.Add(1)
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *memoryCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

func (c *memoryCache) Stats() CacheStats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()

	return CacheStats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Sets:        c.sets.Load(),
		Evictions:   c.evictions.Load(),
		CurrentSize: size,
	}
}

func (c *memoryCache) HealthCheck(context.Context) error { return nil }

// deleteExpired removes all expired entries and returns how many were dropped.
func (c *memoryCache) deleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0
	for key, e := range c.entries {
		if e.isExpired(now) {
			delete(c.entries, key)
			count++
		}
	}

	c.evictions.Add(int64(count))
	return count
}

// Close stops the background cleanup goroutine. Safe to call twice.
func (c *memoryCache) Close() error {
	if c.janitor != nil {
		c.janitor.once.Do(func() { close(c.janitor.stop) })
		<-c.janitor.done
	}
	return nil
}

// janitor performs periodic cleanup of expired entries.
type janitor struct {
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

func (j *janitor) run(c *memoryCache) {
	defer close(j.done)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-j.stop:
			return
		}
	}
}

// noOpCache is a cache that does nothing (used when caching is disabled).
type noOpCache struct{}

// NewNoOpCache creates a cache that doesn't cache anything.
func NewNoOpCache() Cache {
	return noOpCache{}
}

func (noOpCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (noOpCache) Set(context.Context, string, []byte, time.Duration) {}
func (noOpCache) Delete(context.Context, string) {}
func (noOpCache) Clear(context.Context) {}
func (noOpCache) Stats() CacheStats { return CacheStats{} }
func (noOpCache) HealthCheck(context.Context) error { return nil }
func (noOpCache) Close() error { return nil }
