// Copyright (c) 2025-2026 SearchGate Inc. All rights reserved.

package gosearchgate

import (
	"container/list"
	"sync"
	"time"
)

const (
	defaultCacheMaxEntries = 100
	// mirrors the dataset structure cache default used upstream
	defaultCacheTTL = 20 * time.Hour
)

type resultCacheEntry struct {
	key        string
	value      *ResultSet
	insertedAt time.Time
}

// resultCache memoizes resolved result sets keyed by request fingerprint.
// Entries are bounded by maxEntries with least-recently-updated eviction and
// by an absolute TTL. Expired entries are dropped lazily on lookup.
type resultCache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	order      *list.List // front = most recently used
	table      map[string]*list.Element
	now        func() time.Time
}

func newResultCache(maxEntries int, ttl time.Duration) *resultCache {
	if maxEntries <= 0 {
		maxEntries = defaultCacheMaxEntries
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &resultCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		order:      list.New(),
		table:      make(map[string]*list.Element),
		now:        time.Now,
	}
}

// get returns the live entry for key, refreshing its recency. A TTL-expired
// entry is treated as absent and removed.
func (rc *resultCache) get(key string) (*ResultSet, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	elem, ok := rc.table[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*resultCacheEntry)
	if entry.isExpired(rc.now(), rc.ttl) {
		rc.order.Remove(elem)
		delete(rc.table, key)
		return nil, false
	}
	rc.order.MoveToFront(elem)
	return entry.value, true
}

// set inserts or overwrites the entry for key, evicting the least recently
// updated entry when at capacity.
func (rc *resultCache) set(key string, value *ResultSet) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if elem, ok := rc.table[key]; ok {
		entry := elem.Value.(*resultCacheEntry)
		entry.value = value
		entry.insertedAt = rc.now()
		rc.order.MoveToFront(elem)
		return
	}
	rc.sweepExpired()
	for len(rc.table) >= rc.maxEntries {
		oldest := rc.order.Back()
		if oldest == nil {
			break
		}
		rc.order.Remove(oldest)
		delete(rc.table, oldest.Value.(*resultCacheEntry).key)
	}
	entry := &resultCacheEntry{key: key, value: value, insertedAt: rc.now()}
	rc.table[key] = rc.order.PushFront(entry)
}

// invalidate drops one entry, for callers that know the underlying data
// changed.
func (rc *resultCache) invalidate(key string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if elem, ok := rc.table[key]; ok {
		rc.order.Remove(elem)
		delete(rc.table, key)
	}
}

func (rc *resultCache) clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.order.Init()
	rc.table = make(map[string]*list.Element)
}

// sweepExpired removes expired entries. Caller must hold the lock.
func (rc *resultCache) sweepExpired() {
	now := rc.now()
	for elem := rc.order.Back(); elem != nil; {
		prev := elem.Prev()
		entry := elem.Value.(*resultCacheEntry)
		if entry.isExpired(now, rc.ttl) {
			rc.order.Remove(elem)
			delete(rc.table, entry.key)
		}
		elem = prev
	}
}

func (e *resultCacheEntry) isExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.insertedAt) >= ttl
}
