package cache

import (
	"sync"
	"time"

	"github.com/pricescout/backend/internal/domain"
)

// entry is one finished aggregation run
type entry struct {
	offers    []domain.Offer
	createdAt time.Time
	expiresAt time.Time
	startedAt time.Time // start of the run that produced this entry
}

// MemoryCache is a thread-safe in-memory result cache with TTL support.
// Expiry is passive (checked on read) with an optional background sweep.
type MemoryCache struct {
	data  map[string]entry
	mutex sync.RWMutex
	clock domain.Clock
}

// NewMemoryCache creates a result cache. A sweepInterval of zero disables
// the background cleanup goroutine; expired entries still read as misses.
func NewMemoryCache(clock domain.Clock, sweepInterval time.Duration) *MemoryCache {
	if clock == nil {
		clock = domain.RealClock()
	}

	cache := &MemoryCache{
		data:  make(map[string]entry),
		clock: clock,
	}

	if sweepInterval > 0 {
		go cache.sweepExpired(sweepInterval)
	}

	return cache
}

// Get returns the cached offers for key, or false on a miss or an expired entry
func (c *MemoryCache) Get(key string) ([]domain.Offer, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, exists := c.data[key]
	if !exists {
		return nil, false
	}
	if c.clock.Now().After(e.expiresAt) {
		return nil, false
	}

	// Copy so no caller can alias the stored slice.
	offers := make([]domain.Offer, len(e.offers))
	copy(offers, e.offers)
	return offers, true
}

// Put stores a finished run. startedAt is the start time of the aggregation
// that produced the offers: a run started earlier never overwrites an entry
// written by a run started later, so completion-order races cannot publish
// stale data.
func (c *MemoryCache) Put(key string, offers []domain.Offer, ttl time.Duration, startedAt time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if existing, exists := c.data[key]; exists && existing.startedAt.After(startedAt) {
		return
	}

	now := c.clock.Now()
	c.data[key] = entry{
		offers:    offers,
		createdAt: now,
		expiresAt: now.Add(ttl),
		startedAt: startedAt,
	}
}

// InvalidateAll removes every entry
func (c *MemoryCache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]entry)
}

// Size returns the current number of entries (for /health and debugging)
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// sweepExpired removes expired entries periodically
func (c *MemoryCache) sweepExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := c.clock.Now()
		for key, e := range c.data {
			if now.After(e.expiresAt) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}
