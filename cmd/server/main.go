package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/pricescout/backend/config"
	httpDelivery "github.com/pricescout/backend/internal/delivery/http"
	"github.com/pricescout/backend/internal/domain"
	"github.com/pricescout/backend/internal/infrastructure/cache"
	"github.com/pricescout/backend/internal/infrastructure/fetch"
	"github.com/pricescout/backend/internal/infrastructure/ratelimit"
	"github.com/pricescout/backend/internal/parser"
	"github.com/pricescout/backend/internal/registry"
	"github.com/pricescout/backend/internal/usecase"
)

func main() {
	// A missing .env is fine; real deployments set env vars directly.
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting PriceScout Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	clock := domain.RealClock()

	marketplaceRegistry := registry.New()
	offerParser := parser.New(clock)
	if err := marketplaceRegistry.Validate(offerParser.Supported); err != nil {
		log.Fatalf("Marketplace registry is inconsistent: %v", err)
	}
	log.Printf("Registry: %d countries", len(marketplaceRegistry.Countries()))

	memoryCache := cache.NewMemoryCache(clock, cfg.Cache.SweepInterval)
	log.Printf("Cache TTL: %s (sweep every %s)", cfg.Cache.TTL, cfg.Cache.SweepInterval)

	fetcher := fetch.NewClient(cfg.Aggregator.FetchTimeout)
	if cfg.Server.Environment == "development" {
		fetcher.SetDebug(true)
		log.Printf("Fetch client debug mode enabled")
	}

	matcher := usecase.NewMatchingService(usecase.MatchConfig{
		Threshold:        cfg.Matcher.Threshold,
		OverlapWeight:    cfg.Matcher.OverlapWeight,
		CoverageBonus:    cfg.Matcher.CoverageBonus,
		ExclusionPenalty: cfg.Matcher.ExclusionPenalty,
	})
	log.Printf("Matcher: threshold=%.2f", matcher.Threshold())

	aggregator := usecase.NewAggregatorService(
		marketplaceRegistry,
		fetcher,
		memoryCache,
		ratelimit.NewRegistry(),
		offerParser,
		matcher,
		clock,
		usecase.AggregatorConfig{
			RunTimeout:   cfg.Aggregator.RunTimeout,
			FetchTimeout: cfg.Aggregator.FetchTimeout,
			CacheTTL:     cfg.Cache.TTL,
			MaxInFlight:  cfg.Aggregator.MaxInFlight,
		},
	)

	handler := httpDelivery.NewHandler(aggregator)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
