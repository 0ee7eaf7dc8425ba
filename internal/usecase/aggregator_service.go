package usecase

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/pricescout/backend/internal/domain"
)

// Defaults for the aggregation run. Overridable through AggregatorConfig.
const (
	defaultRunTimeout   = 25 * time.Second
	defaultFetchTimeout = 8 * time.Second
	defaultCacheTTL     = 30 * time.Minute
	defaultMaxInFlight  = 12
)

// MarketplaceDirectory resolves which marketplaces serve a country
type MarketplaceDirectory interface {
	MarketplacesFor(country string) ([]domain.MarketplaceProfile, error)
	Countries() []string
}

// SourceLimiter enforces per-marketplace politeness before a fetch
type SourceLimiter interface {
	Wait(ctx context.Context, mp domain.MarketplaceProfile) error
}

// OfferParser turns a fetched page into offers
type OfferParser interface {
	Parse(mp domain.MarketplaceProfile, rawContent string) ([]domain.Offer, error)
}

// AggregatorConfig holds tunables for a search run
type AggregatorConfig struct {
	RunTimeout   time.Duration // budget for the whole aggregation run
	FetchTimeout time.Duration // budget for a single marketplace fetch
	CacheTTL     time.Duration
	MaxInFlight  int64 // global cap on concurrent fetches across all runs
}

// AggregatorService orchestrates a search: resolve marketplaces, fan out
// fetches under the concurrency cap and per-source rate limits, parse and
// score the offers, deduplicate, sort by price, cache.
type AggregatorService struct {
	directory MarketplaceDirectory
	fetcher   domain.Fetcher
	cache     domain.ResultCache
	limiter   SourceLimiter
	parser    OfferParser
	matcher   *MatchingService
	clock     domain.Clock

	sem    *semaphore.Weighted
	group  singleflight.Group
	config AggregatorConfig
}

// NewAggregatorService creates the orchestrator with dependency injection
func NewAggregatorService(
	directory MarketplaceDirectory,
	fetcher domain.Fetcher,
	cache domain.ResultCache,
	limiter SourceLimiter,
	parser OfferParser,
	matcher *MatchingService,
	clock domain.Clock,
	config AggregatorConfig,
) *AggregatorService {
	if config.RunTimeout <= 0 {
		config.RunTimeout = defaultRunTimeout
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = defaultFetchTimeout
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = defaultCacheTTL
	}
	if config.MaxInFlight <= 0 {
		config.MaxInFlight = defaultMaxInFlight
	}
	if clock == nil {
		clock = domain.RealClock()
	}

	return &AggregatorService{
		directory: directory,
		fetcher:   fetcher,
		cache:     cache,
		limiter:   limiter,
		parser:    parser,
		matcher:   matcher,
		clock:     clock,
		sem:       semaphore.NewWeighted(config.MaxInFlight),
		config:    config,
	}
}

// Search runs a price aggregation for rawQuery in country. A run with zero
// matching offers is a success, not an error; errors are reserved for bad
// input and unsupported countries. Concurrent identical searches share one
// underlying run.
func (s *AggregatorService) Search(ctx context.Context, rawQuery, country string) (*domain.SearchResult, error) {
	query, err := NormalizeQuery(rawQuery, country)
	if err != nil {
		return nil, err
	}

	marketplaces, err := s.directory.MarketplacesFor(query.Country)
	if err != nil {
		return nil, err
	}

	key := domain.CacheKey(query.Text, query.Country)
	if offers, ok := s.cache.Get(key); ok {
		log.Printf("[CACHE] hit for %q (%s): %d offer(s)", query.Raw, query.Country, len(offers))
		return s.buildResult(query, offers, true), nil
	}

	// Identical searches arriving while a run is in flight wait for that
	// run instead of launching their own.
	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		return s.runSearch(ctx, query, marketplaces, key)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Printf("[SEARCH] %q (%s) shared an in-flight run", query.Raw, query.Country)
	}

	return s.buildResult(query, v.([]domain.Offer), false), nil
}

// Countries lists the supported country codes
func (s *AggregatorService) Countries() []string {
	return s.directory.Countries()
}

// CacheSize reports the number of cached runs
func (s *AggregatorService) CacheSize() int {
	return s.cache.Size()
}

// ClearCache drops every cached run
func (s *AggregatorService) ClearCache() {
	s.cache.InvalidateAll()
	log.Printf("[CACHE] cleared")
}

func (s *AggregatorService) buildResult(query domain.Query, offers []domain.Offer, cached bool) *domain.SearchResult {
	return &domain.SearchResult{
		Query:      query.Raw,
		Country:    query.Country,
		Offers:     offers,
		TotalCount: len(offers),
		Cached:     cached,
	}
}

type fetchOutcome struct {
	index  int
	mp     domain.MarketplaceProfile
	offers []domain.Offer
	err    error
}

// runSearch performs the fan-out for one (query, country) pair. Failed
// sources are logged and skipped; sources still outstanding when the run
// deadline fires are abandoned. Offers are collected in marketplace order
// so scoring ties and dedup survivors are deterministic.
func (s *AggregatorService) runSearch(ctx context.Context, query domain.Query, marketplaces []domain.MarketplaceProfile, key string) ([]domain.Offer, error) {
	startedAt := s.clock.Now()

	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	// Buffered to len(marketplaces) so abandoned stragglers can still send
	// and terminate instead of leaking.
	outcomes := make(chan fetchOutcome, len(marketplaces))
	for i, mp := range marketplaces {
		go func(i int, mp domain.MarketplaceProfile) {
			offers, err := s.fetchMarketplace(runCtx, query, mp)
			outcomes <- fetchOutcome{index: i, mp: mp, offers: offers, err: err}
		}(i, mp)
	}

	collected := make([][]domain.Offer, len(marketplaces))
	pending := len(marketplaces)
	for pending > 0 {
		select {
		case out := <-outcomes:
			pending--
			if out.err != nil {
				log.Printf("[FETCH] %s (%s) failed: %v", out.mp.ID, query.Country, out.err)
				continue
			}
			log.Printf("[FETCH] %s (%s): %d listing(s)", out.mp.ID, query.Country, len(out.offers))
			collected[out.index] = out.offers
		case <-runCtx.Done():
			log.Printf("[SEARCH] deadline for %q (%s), abandoning %d source(s)", query.Raw, query.Country, pending)
			pending = 0
		}
	}

	offers := s.assemble(query, collected)
	s.cache.Put(key, offers, s.config.CacheTTL, startedAt)

	log.Printf("[SEARCH] %q (%s): %d offer(s) in %s", query.Raw, query.Country, len(offers), time.Since(startedAt).Round(time.Millisecond))
	return offers, nil
}

// fetchMarketplace fetches and parses a single source under the global
// concurrency cap and the source's rate limit
func (s *AggregatorService) fetchMarketplace(ctx context.Context, query domain.Query, mp domain.MarketplaceProfile) ([]domain.Offer, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("concurrency slot: %w", err)
	}
	defer s.sem.Release(1)

	if err := s.limiter.Wait(ctx, mp); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	searchURL := fmt.Sprintf(mp.SearchURL, url.QueryEscape(query.Raw))

	fetchCtx, cancel := context.WithTimeout(ctx, s.config.FetchTimeout)
	defer cancel()

	body, err := s.fetcher.Fetch(fetchCtx, searchURL)
	if err != nil {
		return nil, err
	}

	return s.parser.Parse(mp, body)
}

// assemble scores, filters, deduplicates and price-sorts the collected
// listings. The stable sort keeps marketplace order for equal prices.
func (s *AggregatorService) assemble(query domain.Query, collected [][]domain.Offer) []domain.Offer {
	matched := make([]domain.MatchedOffer, 0)
	for _, offers := range collected {
		for _, offer := range offers {
			score := s.matcher.Score(query.Text, offer.Name)
			if score >= s.matcher.Threshold() {
				matched = append(matched, domain.MatchedOffer{Offer: offer, Score: score})
			}
		}
	}

	matched = Dedupe(matched)

	final := make([]domain.Offer, len(matched))
	for i, m := range matched {
		final[i] = m.Offer
	}
	sort.SliceStable(final, func(i, j int) bool {
		return final[i].Price.LessThan(final[j].Price)
	})

	return final
}
