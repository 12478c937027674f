package matcher

import (
	"container/list"
	"regexp"
	"sync"
	"sync/atomic"
)

// DefaultCacheCapacity is the LRU capacity used when none is specified,
// matching cache.rs's default.
const DefaultCacheCapacity = 100

// RegexCache is an LRU-bounded, concurrency-safe cache of compiled regular
// expressions, shared across Matchers (spec.md §4.2, §5: "the only
// genuinely shared, concurrently mutated data structure"). The fast path
// takes a read lock; a miss promotes to a write lock with a double-check
// to avoid a redundant compile if another goroutine won the race.
//
// An intrusive doubly-linked list (container/list) backs LRU ordering,
// giving O(1) promotion as suggested in spec.md §9, rather than the
// source's plain Vec-ordering which is O(n).
type RegexCache struct {
	mu       sync.RWMutex
	capacity int
	entries  map[string]*list.Element // key -> node in order
	order    *list.List                // front = most recently used
	hits     atomic.Int64
	misses   atomic.Int64
}

type cacheNode struct {
	key string
	re  *regexp.Regexp
}

// NewRegexCache creates a cache with the given capacity (<=0 means use
// DefaultCacheCapacity).
func NewRegexCache(capacity int) *RegexCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &RegexCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// WithDefaultSize creates a cache using DefaultCacheCapacity.
func WithDefaultSize() *RegexCache { return NewRegexCache(DefaultCacheCapacity) }

// GetOrCompile returns a compiled regexp for src, compiling and caching it
// on first use. Safe for concurrent use by multiple Matchers.
func (c *RegexCache) GetOrCompile(src string) (*regexp.Regexp, error) {
	c.mu.RLock()
	if el, ok := c.entries[src]; ok {
		re := el.Value.(*cacheNode).re
		c.mu.RUnlock()
		c.mu.Lock()
		// Re-check under write lock before touching the list: another
		// goroutine may have evicted/reinserted src between unlock/lock.
		if el, ok := c.entries[src]; ok {
			c.order.MoveToFront(el)
			c.mu.Unlock()
			c.hits.Add(1)
			return re, nil
		}
		c.mu.Unlock()
	} else {
		c.mu.RUnlock()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check: someone else may have compiled src while we waited for
	// the write lock.
	if el, ok := c.entries[src]; ok {
		c.order.MoveToFront(el)
		c.hits.Add(1)
		return el.Value.(*cacheNode).re, nil
	}

	c.misses.Add(1)
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, err
	}

	el := c.order.PushFront(&cacheNode{key: src, re: re})
	c.entries[src] = el
	if len(c.entries) > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheNode).key)
		}
	}
	return re, nil
}

// Stats reports cumulative hit/miss counters and the derived hit rate.
type Stats struct {
	Hits, Misses int64
	HitRate      float64
}

// Stats returns a snapshot of the cache's hit/miss counters.
func (c *RegexCache) Stats() Stats {
	h, m := c.hits.Load(), c.misses.Load()
	total := h + m
	rate := 0.0
	if total > 0 {
		rate = float64(h) / float64(total)
	}
	return Stats{Hits: h, Misses: m, HitRate: rate}
}

// Len reports how many compiled patterns are currently cached.
func (c *RegexCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
