package tplc

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Compile cache defaults
const (
	DefaultCacheTTL        = 2 * time.Second
	DefaultCacheMaxEntries = 1000
)

// Compile cache log messages
const (
	LogMsgCacheHit     = "compile cache hit"
	LogMsgCacheStale   = "compile cache entry stale"
	LogMsgCacheEvicted = "compile cache entry evicted"
)

// CacheConfig configures a CompileCache.
type CacheConfig struct {
	// TTL is how long an entry is served without asking the loader whether
	// its dependencies changed. After the TTL the entry is revalidated, not
	// dropped. Default: 2 seconds.
	TTL time.Duration

	// MaxEntries is the maximum number of cached programs. When exceeded,
	// the least recently used entry is evicted. Default: 1000.
	MaxEntries int
}

// DefaultCacheConfig returns the default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        DefaultCacheTTL,
		MaxEntries: DefaultCacheMaxEntries,
	}
}

// CompileCache memoizes Engine.Compile. Entries are revalidated against the
// freshness tokens of every template they were built from, so editing an
// imported component invalidates every page that uses it.
type CompileCache struct {
	engine *Engine
	config CacheConfig
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]*compiledEntry
	stats   CacheStats
}

// CacheStats tracks cache performance.
type CacheStats struct {
	Hits        int64
	Misses      int64
	Revalidated int64
	Evictions   int64
	Entries     int
}

// compiledEntry is one cached program
type compiledEntry struct {
	compiled   *CompiledSource
	checkedAt  time.Time
	accessedAt time.Time
}

// NewCompileCache wraps engine with a compile cache. Zero config fields
// take the defaults.
func NewCompileCache(engine *Engine, config CacheConfig) *CompileCache {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheTTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultCacheMaxEntries
	}
	return &CompileCache{
		engine:  engine,
		config:  config,
		logger:  engine.logger,
		entries: make(map[string]*compiledEntry),
	}
}

// Get returns the compiled program for identifier, compiling it when it is
// not cached or when one of its dependencies changed. Failures are not cached.
func (c *CompileCache) Get(identifier string) (*CompiledSource, error) {
	now := time.Now()

	c.mu.Lock()
	entry, ok := c.entries[identifier]
	if ok && now.Sub(entry.checkedAt) < c.config.TTL {
		entry.accessedAt = now
		c.stats.Hits++
		c.mu.Unlock()
		c.logger.Debug(LogMsgCacheHit, zap.String(LogFieldIdentifier, identifier))
		return entry.compiled, nil
	}
	c.mu.Unlock()

	// Revalidate outside the lock; the loader may hit disk or a database
	if ok {
		if !entry.compiled.Stale(c.engine.Loader()) {
			c.mu.Lock()
			entry.checkedAt, entry.accessedAt = now, now
			c.stats.Hits++
			c.stats.Revalidated++
			c.mu.Unlock()
			return entry.compiled, nil
		}
		c.logger.Debug(LogMsgCacheStale, zap.String(LogFieldIdentifier, identifier))
	}

	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()

	compiled, err := c.engine.Compile(identifier)
	if err != nil {
		c.Invalidate(identifier)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[identifier]; !exists && len(c.entries) >= c.config.MaxEntries {
		c.evictOldest()
	}
	c.entries[identifier] = &compiledEntry{compiled: compiled, checkedAt: now, accessedAt: now}
	return compiled, nil
}

// Invalidate removes identifier from the cache.
func (c *CompileCache) Invalidate(identifier string) {
	c.mu.Lock()
	delete(c.entries, identifier)
	c.mu.Unlock()
}

// InvalidateAll clears the cache.
func (c *CompileCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*compiledEntry)
	c.mu.Unlock()
}

// Len returns the number of cached programs.
func (c *CompileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache statistics.
func (c *CompileCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := c.stats
	stats.Entries = len(c.entries)
	return stats
}

// evictOldest removes the least recently used entry.
// Caller must hold the lock.
func (c *CompileCache) evictOldest() {
	var (
		oldestID string
		oldest   *compiledEntry
	)
	for id, entry := range c.entries {
		if oldest == nil || entry.accessedAt.Before(oldest.accessedAt) {
			oldestID, oldest = id, entry
		}
	}
	if oldest != nil {
		delete(c.entries, oldestID)
		c.stats.Evictions++
		c.logger.Debug(LogMsgCacheEvicted, zap.String(LogFieldIdentifier, oldestID))
	}
}
