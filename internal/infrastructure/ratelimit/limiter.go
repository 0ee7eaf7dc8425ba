package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/pricescout/backend/internal/domain"
)

// Registry hands out one token bucket per marketplace id, shared across all
// concurrent aggregation runs. Buckets are created lazily on first use and
// live until process exit.
type Registry struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRegistry creates an empty rate limiter registry
func NewRegistry() *Registry {
	return &Registry{
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a token is available for the marketplace or the context
// is canceled. A caller canceled while queued does not consume a token;
// rate.Limiter cancels the reservation internally.
func (r *Registry) Wait(ctx context.Context, mp domain.MarketplaceProfile) error {
	return r.limiterFor(mp).Wait(ctx)
}

// Allow reports whether a token is immediately available, consuming it if so
func (r *Registry) Allow(mp domain.MarketplaceProfile) bool {
	return r.limiterFor(mp).Allow()
}

func (r *Registry) limiterFor(mp domain.MarketplaceProfile) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	lim, ok := r.limiters[mp.ID]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(mp.RateLimit), mp.Burst)
		r.limiters[mp.ID] = lim
	}
	return lim
}
