package domain

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// CacheKey builds the result-cache key for a normalized (query, country)
// pair. Normalization happens before this call; "iPhone 16" and "iphone 16"
// must already be the same text.
func CacheKey(queryText, country string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%s", queryText, country)))
	return hex.EncodeToString(sum[:])
}

// Fetcher retrieves raw page content for a URL. The aggregation core never
// performs network I/O itself; everything behind this interface (TLS,
// proxying, headers) belongs to the transport layer.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ResultCache stores finished aggregation runs keyed by normalized
// (query, country). A Put carries the start time of the run that produced
// it so a slow stale run can never overwrite a fresher entry.
type ResultCache interface {
	Get(key string) ([]Offer, bool)
	Put(key string, offers []Offer, ttl time.Duration, startedAt time.Time)
	InvalidateAll()
	Size() int
}

// Clock abstracts time for TTL and deadline computation
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns a Clock backed by time.Now
func RealClock() Clock { return realClock{} }
