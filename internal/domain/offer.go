package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Query represents one normalized search request
type Query struct {
	Raw     string `json:"raw"`     // original casing, kept for display/logging
	Text    string `json:"text"`    // trimmed and case-folded, used for matching and cache keys
	Country string `json:"country"` // upper-case country code, e.g. "US"
}

// MarketplaceProfile describes one scrape target for one country.
// Profiles are loaded once at process start and never mutated.
type MarketplaceProfile struct {
	ID            string  `json:"id"`       // e.g. "amazon"
	Country       string  `json:"country"`  // e.g. "US"
	Domain        string  `json:"domain"`   // e.g. "amazon.com"
	Currency      string  `json:"currency"` // e.g. "USD"
	SearchURL     string  `json:"searchUrl"` // template, %s is the escaped query
	ParserProfile string  `json:"parserProfile"`
	RateLimit     float64 `json:"rateLimit"` // requests per second
	Burst         int     `json:"burst"`
}

// Offer is a single extracted listing from one marketplace page.
// Immutable after creation; ownership moves through the pipeline.
type Offer struct {
	Marketplace  string           `json:"marketplace"`
	Name         string           `json:"name"`
	Price        decimal.Decimal  `json:"price"`
	Currency     string           `json:"currency"`
	Link         string           `json:"link"`
	Availability string           `json:"availability"`
	Rating       *float64         `json:"rating,omitempty"`
	ShippingCost *decimal.Decimal `json:"shippingCost,omitempty"`
	FetchedAt    time.Time        `json:"fetchedAt"`
}

// MatchedOffer is an Offer plus its relevance score in [0,1]
type MatchedOffer struct {
	Offer
	Score float64 `json:"score"`
}

// SearchResult is the response of one aggregation run
type SearchResult struct {
	Query      string  `json:"query"`
	Country    string  `json:"country"`
	Offers     []Offer `json:"results"`
	TotalCount int     `json:"total_count"`
	Cached     bool    `json:"cached"`
}
