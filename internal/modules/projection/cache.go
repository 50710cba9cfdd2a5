package projection

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CacheKey builds the canonical memoization key from the request fields that
// determine a simulation. An empty instrument leaves the key un-namespaced.
func CacheKey(instrument string, monthlyDeposit float64, yearsToInvest int, annualGrowthRate float64, pathCount int) string {
	var b strings.Builder
	if instrument != "" {
		b.WriteString(strings.ToUpper(instrument))
		b.WriteByte('|')
	}
	b.WriteString(strconv.FormatFloat(monthlyDeposit, 'g', -1, 64))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(yearsToInvest))
	b.WriteByte('-')
	b.WriteString(strconv.FormatFloat(annualGrowthRate, 'g', -1, 64))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(pathCount))
	return b.String()
}

// CacheStats is a point-in-time view of the cache.
type CacheStats struct {
	Size     int       `json:"size"`
	Capacity int       `json:"capacity"`
	Hits     uint64    `json:"hits"`
	Misses   uint64    `json:"misses"`
	Oldest   time.Time `json:"oldest,omitempty"`
}

type cacheEntry struct {
	result     *SimulationResult
	insertedAt time.Time
}

// Cache memoizes simulation results by key with first-in-first-out eviction.
// Concurrent misses on the same key share a single computation.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	order    []string
	capacity int
	now      func() time.Time
	hits     uint64
	misses   uint64

	inflight singleflight.Group
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCapacity bounds the number of memoized results. Non-positive values are ignored.
func WithCapacity(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithClock replaces time.Now for insertion timestamps.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache creates an empty cache holding DefaultCacheCapacity entries unless configured otherwise.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries:  make(map[string]cacheEntry),
		capacity: DefaultCacheCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the memoized result for key.
func (c *Cache) Get(key string) (*SimulationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return entry.result, true
}

// Put stores result under key. An existing entry is kept, so a key is only
// ever bound to the first result stored for it. When the cache is full the
// single oldest-inserted entry is evicted first.
func (c *Cache) Put(key string, result *SimulationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return
	}
	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = cacheEntry{result: result, insertedAt: c.now()}
	c.order = append(c.order, key)
}

// GetOrCompute returns the result for key, running compute at most once per
// key across concurrent callers. hit reports whether the result was already
// memoized. If ctx ends first the caller stops waiting, but the shared
// computation continues and is still cached.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func() (*SimulationResult, error)) (result *SimulationResult, hit bool, err error) {
	if res, ok := c.Get(key); ok {
		return res, true, nil
	}

	ch := c.inflight.DoChan(key, func() (interface{}, error) {
		if res, ok := c.peek(key); ok {
			return res, nil
		}
		res, err := compute()
		if err != nil {
			return nil, err
		}
		c.Put(key, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("stopped waiting for simulation %q: %w", key, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, false, r.Err
		}
		return r.Val.(*SimulationResult), false, nil
	}
}

// peek looks up key without touching the hit counters.
func (c *Cache) peek(key string) (*SimulationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	return entry.result, ok
}

// Keys returns the cached keys oldest first.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}

// Len returns the number of memoized results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the configured bound.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Now returns the cache clock reading.
func (c *Cache) Now() time.Time {
	return c.now()
}

// Stats returns counters and occupancy.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := CacheStats{
		Size:     len(c.entries),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
	}
	if len(c.order) > 0 {
		stats.Oldest = c.entries[c.order[0]].insertedAt
	}
	return stats
}
