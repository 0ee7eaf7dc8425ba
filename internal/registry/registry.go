package registry

import (
	"fmt"
	"strings"

	"github.com/pricescout/backend/internal/domain"
)

// siteDef holds the per-marketplace constants that do not vary by country:
// the search URL shape, the parser profile and the outbound rate limit.
type siteDef struct {
	urlTemplate string // %s is the escaped query
	rateLimit   float64
	burst       int
}

var siteDefs = map[string]siteDef{
	"amazon":   {"https://%s/s?k=%s&ref=sr_pg_1", 0.5, 2},
	"ebay":     {"https://%s/sch/i.html?_nkw=%s&_sacat=0&LH_BIN=1&_sop=15", 1, 3},
	"walmart":  {"https://%s/search?q=%s", 1, 3},
	"flipkart": {"https://%s/search?q=%s&sort=price_asc", 1, 3},
	"target":   {"https://%s/s?searchTerm=%s", 1, 3},
}

// countryEntry pins one marketplace to one country-specific domain and currency
type countryEntry struct {
	id       string
	domain   string
	currency string
}

// countryTable is the static country -> marketplaces mapping. Slice order is
// declaration order and is the stable dispatch/tie-break order for a run.
var countryTable = []struct {
	code  string
	sites []countryEntry
}{
	{"US", []countryEntry{
		{"ebay", "ebay.com", "USD"},
		{"walmart", "walmart.com", "USD"},
		{"amazon", "amazon.com", "USD"},
		{"target", "target.com", "USD"},
	}},
	{"CA", []countryEntry{
		{"ebay", "ebay.ca", "CAD"},
		{"walmart", "walmart.ca", "CAD"},
		{"amazon", "amazon.ca", "CAD"},
	}},
	{"UK", []countryEntry{
		{"ebay", "ebay.co.uk", "GBP"},
		{"amazon", "amazon.co.uk", "GBP"},
	}},
	{"DE", []countryEntry{
		{"ebay", "ebay.de", "EUR"},
		{"amazon", "amazon.de", "EUR"},
	}},
	{"FR", []countryEntry{
		{"ebay", "ebay.fr", "EUR"},
		{"amazon", "amazon.fr", "EUR"},
	}},
	{"IN", []countryEntry{
		{"amazon", "amazon.in", "INR"},
		{"flipkart", "flipkart.com", "INR"},
	}},
	{"JP", []countryEntry{
		{"amazon", "amazon.co.jp", "JPY"},
	}},
	{"AU", []countryEntry{
		{"amazon", "amazon.com.au", "AUD"},
		{"ebay", "ebay.com.au", "AUD"},
	}},
	{"BR", []countryEntry{
		{"amazon", "amazon.com.br", "BRL"},
	}},
	{"SG", []countryEntry{
		{"amazon", "amazon.sg", "SGD"},
	}},
}

// Registry is the static country -> marketplace mapping.
// Read-only after New; safe for concurrent use.
type Registry struct {
	countries map[string][]domain.MarketplaceProfile
	order     []string
}

// New builds the registry from the built-in marketplace table
func New() *Registry {
	r := &Registry{
		countries: make(map[string][]domain.MarketplaceProfile, len(countryTable)),
	}

	for _, ct := range countryTable {
		profiles := make([]domain.MarketplaceProfile, 0, len(ct.sites))
		for _, site := range ct.sites {
			def := siteDefs[site.id]
			profiles = append(profiles, domain.MarketplaceProfile{
				ID:            site.id,
				Country:       ct.code,
				Domain:        site.domain,
				Currency:      site.currency,
				SearchURL:     fmt.Sprintf(def.urlTemplate, site.domain, "%s"),
				ParserProfile: site.id,
				RateLimit:     def.rateLimit,
				Burst:         def.burst,
			})
		}
		r.countries[ct.code] = profiles
		r.order = append(r.order, ct.code)
	}

	return r
}

// MarketplacesFor returns the ordered marketplaces to query for a country
// code. The returned slice must not be mutated by callers.
func (r *Registry) MarketplacesFor(countryCode string) ([]domain.MarketplaceProfile, error) {
	profiles, ok := r.countries[strings.ToUpper(countryCode)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedCountry, countryCode)
	}
	return profiles, nil
}

// Supports reports whether a country code has registered marketplaces
func (r *Registry) Supports(countryCode string) bool {
	_, ok := r.countries[strings.ToUpper(countryCode)]
	return ok
}

// Countries returns supported country codes in declaration order
func (r *Registry) Countries() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Validate checks every profile against the parser dispatch table and the
// rate-limit invariants. A malformed profile is a programming error, so
// callers treat a non-nil return as fatal at startup.
func (r *Registry) Validate(hasParserProfile func(id string) bool) error {
	for _, code := range r.order {
		for _, mp := range r.countries[code] {
			if !hasParserProfile(mp.ParserProfile) {
				return fmt.Errorf("%w: %s (marketplace %s/%s)",
					domain.ErrUnknownParserProfile, mp.ParserProfile, code, mp.ID)
			}
			if mp.RateLimit <= 0 || mp.Burst < 1 {
				return fmt.Errorf("marketplace %s/%s has invalid rate limit %.2f/%d",
					code, mp.ID, mp.RateLimit, mp.Burst)
			}
			if !strings.Contains(mp.SearchURL, "%s") {
				return fmt.Errorf("marketplace %s/%s search URL has no query placeholder: %s",
					code, mp.ID, mp.SearchURL)
			}
			if mp.Currency == "" {
				return fmt.Errorf("marketplace %s/%s has no currency", code, mp.ID)
			}
		}
	}
	return nil
}
