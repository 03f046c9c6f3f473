package location

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// CacheConfig controls snapshot cache behavior. Zero values take the
// defaults in NewSnapshotCache.
type CacheConfig struct {
	// TTL is how long a snapshot stays fresh. Default: 1 hour.
	TTL time.Duration

	// Capacity bounds the number of cached snapshots; the oldest
	// entry is evicted on overflow. Default: 100.
	Capacity int

	// GridSize quantizes coordinates so nearby points share an
	// entry. Default: 0.01 degrees (roughly 1.1 km).
	GridSize float64

	// Now overrides the clock, for tests. Default: time.Now.
	Now func() time.Time
}

// CacheStats reports cache effectiveness counters.
type CacheStats struct {
	Entries   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

type cacheEntry struct {
	snapshot *Snapshot
	storedAt time.Time
}

// SnapshotCache is a TTL and capacity bounded cache of location
// snapshots keyed by grid-quantized coordinates. Safe for concurrent
// use.
type SnapshotCache struct {
	mu        sync.RWMutex
	entries   map[string]*cacheEntry
	ttl       time.Duration
	capacity  int
	gridSize  float64
	hits      uint64
	misses    uint64
	evictions uint64
	now       func() time.Time
}

// NewSnapshotCache creates a cache with the given config.
func NewSnapshotCache(cfg CacheConfig) *SnapshotCache {
	if cfg.TTL == 0 {
		cfg.TTL = time.Hour
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 100
	}
	if cfg.GridSize <= 0 {
		cfg.GridSize = 0.01
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SnapshotCache{
		entries:  make(map[string]*cacheEntry),
		ttl:      cfg.TTL,
		capacity: cfg.Capacity,
		gridSize: cfg.GridSize,
		now:      cfg.Now,
	}
}

// Get returns the cached snapshot for the point if present and fresh.
func (c *SnapshotCache) Get(lat, lon float64) (*Snapshot, bool) {
	key := c.key(lat, lon)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	// Fresh means age strictly below the TTL; an entry stored at t
	// expires at exactly t+TTL.
	if ok && c.now().Sub(entry.storedAt) < c.ttl {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return entry.snapshot, true
	}

	c.mu.Lock()
	if ok {
		// Expired; drop it so Stats reflects reality.
		delete(c.entries, key)
	}
	c.misses++
	c.mu.Unlock()
	return nil, false
}

// Put stores a snapshot, evicting the oldest entry when full.
func (c *SnapshotCache) Put(lat, lon float64, snap *Snapshot) {
	key := c.key(lat, lon)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	c.entries[key] = &cacheEntry{snapshot: snap, storedAt: c.now()}
}

// Invalidate drops every cached snapshot.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Stats returns a point-in-time view of the cache counters.
func (c *SnapshotCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Entries:   len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

func (c *SnapshotCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.storedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.evictions++
	}
}

func (c *SnapshotCache) key(lat, lon float64) string {
	glat := math.Floor(lat/c.gridSize) * c.gridSize
	glon := math.Floor(lon/c.gridSize) * c.gridSize
	return fmt.Sprintf("%.4f:%.4f", glat, glon)
}
