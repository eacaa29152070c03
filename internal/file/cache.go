package file

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LinkCache is a per-instance LRU of public id → record with a TTL.
// Records are immutable apart from the download count, which is never read
// from the cache. A stale entry for a deleted file is harmless: the blob
// fetch that follows every lookup fails and the entry is dropped.
type LinkCache struct {
	lru *expirable.LRU[string, Record]
}

// NewLinkCache returns a cache holding up to size entries for ttl.
// A non-positive size disables caching.
func NewLinkCache(size int, ttl time.Duration) *LinkCache {
	if size <= 0 {
		return &LinkCache{}
	}
	return &LinkCache{lru: expirable.NewLRU[string, Record](size, nil, ttl)}
}

// Get returns a copy of the cached record.
func (c *LinkCache) Get(publicID string) (*Record, bool) {
	if c == nil || c.lru == nil {
		return nil, false
	}
	rec, ok := c.lru.Get(publicID)
	if !ok {
		linkCacheMissesTotal.Inc()
		return nil, false
	}
	linkCacheHitsTotal.Inc()
	return &rec, true
}

// Add caches rec under its public id.
func (c *LinkCache) Add(rec *Record) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Add(rec.PublicID, *rec)
}

// Remove drops the entry for publicID.
func (c *LinkCache) Remove(publicID string) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Remove(publicID)
}
