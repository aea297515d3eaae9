package fibonacci

import "sync"

//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks

// Cache stores memoized Fibonacci values keyed by index. Implementations must
// be safe for concurrent use. Values are deterministic per index, so an entry
// written twice always receives the same value.
type Cache interface {
	// Get returns F(n) if it is cached.
	Get(n int) (int64, bool)
	// Set stores F(n).
	Set(n int, value int64)
	// Floor returns the largest cached index k <= n, k >= 1, for which both
	// F(k) and F(k-1) are cached, together with those two values.
	Floor(n int) (k int, fk, fkMinus1 int64, ok bool)
	// Len returns the number of cached entries.
	Len() int
}

// MemoryCache is a map-backed Cache guarded by a read/write mutex. It never
// evicts.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[int]int64
	highest int
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[int]int64), highest: -1}
}

// Get implements Cache.
func (c *MemoryCache) Get(n int) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[n]
	return v, ok
}

// Set implements Cache.
func (c *MemoryCache) Set(n int, value int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[n] = value
	if n > c.highest {
		c.highest = n
	}
}

// Floor implements Cache. On the usual contiguous prefix 0..highest it returns
// after a single lookup.
func (c *MemoryCache) Floor(n int) (int, int64, int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for k := min(n, c.highest); k >= 1; k-- {
		fk, ok := c.entries[k]
		if !ok {
			continue
		}
		if fkMinus1, ok := c.entries[k-1]; ok {
			return k, fk, fkMinus1, true
		}
	}
	return 0, 0, 0, false
}

// Len implements Cache.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
