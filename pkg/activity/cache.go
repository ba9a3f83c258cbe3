package activity

import (
	"time"

	"github.com/iandesj/aperture/pkg/overlay"
)

// CacheTTL is how long a cached metrics entry stays fresh.
const CacheTTL = 60 * time.Minute

// CachedMetrics is one cache entry: the metrics plus when they were fetched.
type CachedMetrics struct {
	Metrics  Metrics   `json:"metrics"`
	CachedAt time.Time `json:"cachedAt"`
}

// Fresh reports whether the entry is still within the TTL.
func (cm CachedMetrics) Fresh(now time.Time) bool {
	return now.Sub(cm.CachedAt) < CacheTTL
}

// cacheSnapshot is the on-disk shape of the activity cache.
type cacheSnapshot struct {
	Entries map[string]CachedMetrics `json:"entries"`
}

// Cache is a TTL'd metrics cache persisted through an overlay backing.
// Eviction is lazy: expired entries are dropped (and the pruned snapshot
// re-persisted) the next time the cache is read, not on a timer.
//
// Keys are the imported-component composite keys ("provider:repo:name"),
// so the same repository cached for two components still resolves per
// component.
type Cache struct {
	backing overlay.Backing
	now     func() time.Time
}

// NewCache creates a cache over backing.
func NewCache(backing overlay.Backing) *Cache {
	return &Cache{backing: backing, now: time.Now}
}

func (c *Cache) load() map[string]CachedMetrics {
	var snap cacheSnapshot
	if !c.backing.Load(&snap) || snap.Entries == nil {
		return make(map[string]CachedMetrics)
	}
	return snap.Entries
}

// prune drops expired entries in place and reports whether anything was
// removed.
func (c *Cache) prune(entries map[string]CachedMetrics, now time.Time) bool {
	pruned := false
	for key, entry := range entries {
		if !entry.Fresh(now) {
			delete(entries, key)
			pruned = true
		}
	}
	return pruned
}

// Get returns the cached metrics for key, or nil when absent or expired.
// Reading prunes every expired entry and re-persists the snapshot when the
// prune removed something.
func (c *Cache) Get(key string) *Metrics {
	now := c.now()
	entries := c.load()
	if c.prune(entries, now) {
		c.backing.Save(cacheSnapshot{Entries: entries})
	}
	entry, ok := entries[key]
	if !ok {
		return nil
	}
	metrics := entry.Metrics
	return &metrics
}

// Put stores metrics for key with a fresh timestamp.
func (c *Cache) Put(key string, metrics Metrics) {
	now := c.now()
	entries := c.load()
	c.prune(entries, now)
	entries[key] = CachedMetrics{Metrics: metrics, CachedAt: now}
	c.backing.Save(cacheSnapshot{Entries: entries})
}

// Clear drops the whole cache. Returns the number of entries removed,
// counting expired ones still present in the snapshot.
func (c *Cache) Clear() int {
	entries := c.load()
	removed := len(entries)
	c.backing.Save(cacheSnapshot{Entries: map[string]CachedMetrics{}})
	return removed
}

// Len returns the number of fresh entries.
func (c *Cache) Len() int {
	entries := c.load()
	c.prune(entries, c.now())
	return len(entries)
}
