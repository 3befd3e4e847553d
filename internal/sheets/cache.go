package sheets

import (
	"sync"
	"time"

	"trainpulse/pkg/contracts/domain"
)

// Cache memoizes fetched raw tables for a fixed TTL, keyed by
// spreadsheet-id/gid, so repeated UI interactions within the window do
// not hit the origin. Entries expire by age only; there is no explicit
// invalidation beyond a forced refresh bypassing the cache.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	table     *domain.RawTable
	fetchedAt time.Time
}

// NewCache creates a TTL cache. A non-positive ttl disables caching.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func cacheKey(ref SourceRef) string {
	return ref.SpreadsheetID + "/" + ref.GID + "/" + ref.SheetTitle
}

// Get returns the cached table for ref if it is still fresh.
func (c *Cache) Get(ref SourceRef) (*domain.RawTable, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[cacheKey(ref)]
	if !ok || c.now().Sub(entry.fetchedAt) > c.ttl {
		return nil, false
	}
	return entry.table, true
}

// GetStale returns the cached table regardless of age, with its fetch
// time, for stale serving after a failed refresh.
func (c *Cache) GetStale(ref SourceRef) (*domain.RawTable, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[cacheKey(ref)]
	if !ok {
		return nil, time.Time{}, false
	}
	return entry.table, entry.fetchedAt, true
}

// Put stores a freshly fetched table.
func (c *Cache) Put(ref SourceRef, table *domain.RawTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(ref)] = cacheEntry{table: table, fetchedAt: c.now()}
}
