package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pricescout/backend/internal/domain"
)

// fakeClock lets tests control expiry without sleeping
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func sampleOffers(names ...string) []domain.Offer {
	offers := make([]domain.Offer, 0, len(names))
	for _, name := range names {
		offers = append(offers, domain.Offer{
			Marketplace: "ebay",
			Name:        name,
			Price:       decimal.NewFromInt(10),
			Currency:    "USD",
		})
	}
	return offers
}

func TestMemoryCache_PutAndGet(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCache(clock, 0)

	key := domain.CacheKey("iphone 16 pro", "US")
	c.Put(key, sampleOffers("iPhone 16 Pro"), 30*time.Minute, clock.Now())

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Get() miss, want hit")
	}
	if len(got) != 1 || got[0].Name != "iPhone 16 Pro" {
		t.Errorf("Get() = %v, want the stored offer", got)
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache(newFakeClock(), 0)

	if _, ok := c.Get("nope"); ok {
		t.Error("Get() hit, want miss for unknown key")
	}
}

func TestMemoryCache_ExpiryIsPassive(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCache(clock, 0)

	key := domain.CacheKey("boat airdopes", "IN")
	c.Put(key, sampleOffers("boAt Airdopes 311 Pro"), 30*time.Minute, clock.Now())

	clock.advance(29 * time.Minute)
	if _, ok := c.Get(key); !ok {
		t.Error("Get() miss before TTL, want hit")
	}

	clock.advance(2 * time.Minute)
	if _, ok := c.Get(key); ok {
		t.Error("Get() hit after TTL, want miss")
	}
}

func TestMemoryCache_StaleRunNeverOverwritesFresher(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCache(clock, 0)
	key := domain.CacheKey("macbook air", "US")

	earlyStart := clock.Now()
	clock.advance(time.Second)
	lateStart := clock.Now()

	// The later-started run finishes first.
	c.Put(key, sampleOffers("fresh"), 30*time.Minute, lateStart)
	// The earlier-started run straggles in afterwards.
	c.Put(key, sampleOffers("stale"), 30*time.Minute, earlyStart)

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Get() miss, want hit")
	}
	if got[0].Name != "fresh" {
		t.Errorf("Get() = %q, stale run overwrote fresher entry", got[0].Name)
	}

	// A run started even later replaces the entry as usual.
	clock.advance(time.Second)
	c.Put(key, sampleOffers("freshest"), 30*time.Minute, clock.Now())
	got, _ = c.Get(key)
	if got[0].Name != "freshest" {
		t.Errorf("Get() = %q, want newest run to win", got[0].Name)
	}
}

func TestMemoryCache_InvalidateAll(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCache(clock, 0)

	for _, q := range []string{"a", "b", "c"} {
		c.Put(domain.CacheKey(q, "US"), sampleOffers(q), time.Hour, clock.Now())
	}
	if c.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", c.Size())
	}

	c.InvalidateAll()

	if c.Size() != 0 {
		t.Errorf("Size() = %d after InvalidateAll, want 0", c.Size())
	}
	if _, ok := c.Get(domain.CacheKey("a", "US")); ok {
		t.Error("Get() hit after InvalidateAll, want miss")
	}
}

func TestMemoryCache_GetReturnsCopy(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCache(clock, 0)
	key := domain.CacheKey("q", "US")
	c.Put(key, sampleOffers("original"), time.Hour, clock.Now())

	first, _ := c.Get(key)
	first[0].Name = "mutated"

	second, _ := c.Get(key)
	if second[0].Name != "original" {
		t.Error("Get() exposed the stored slice to caller mutation")
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCache(clock, 0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := domain.CacheKey(string(rune('a'+id)), "US")
			c.Put(key, sampleOffers("x"), time.Hour, clock.Now())
			c.Get(key)
		}(i)
	}
	wg.Wait()

	if c.Size() != 10 {
		t.Errorf("Size() = %d, want 10", c.Size())
	}
}

func TestCacheKey_DistinguishesQueryAndCountry(t *testing.T) {
	if domain.CacheKey("iphone", "US") == domain.CacheKey("iphone", "CA") {
		t.Error("domain.CacheKey() must differ per country")
	}
	if domain.CacheKey("iphone", "US") == domain.CacheKey("ipad", "US") {
		t.Error("domain.CacheKey() must differ per query")
	}
	if domain.CacheKey("iphone", "US") != domain.CacheKey("iphone", "US") {
		t.Error("domain.CacheKey() must be deterministic")
	}
}
