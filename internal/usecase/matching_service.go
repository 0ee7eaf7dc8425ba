package usecase

import (
	"regexp"
	"strings"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// Default scoring parameters. All of these are heuristic tuning knobs, not
// load-bearing constants, and can be overridden through MatchConfig.
const (
	defaultOverlapWeight    = 0.8  // weight of the query-token coverage ratio
	defaultCoverageBonus    = 0.2  // every query token appears in the offer name
	defaultExclusionPenalty = 0.25 // offer carries an accessory token the query lacks
	defaultThreshold        = 0.4
)

// defaultExclusionTerms flag listings for a different product category than
// the query, most commonly accessories sold alongside the item itself.
var defaultExclusionTerms = []string{
	"case", "cover", "protector", "tempered", "glass", "film", "skin",
	"sticker", "cable", "charger", "adapter", "dock", "stand", "holder",
	"mount", "strap", "band", "pouch", "sleeve", "replacement", "repair",
}

// basicStopWords are dropped during tokenization; they carry no product signal
var basicStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "for": true, "with": true, "in": true, "on": true,
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	Threshold        float64
	OverlapWeight    float64
	CoverageBonus    float64
	ExclusionPenalty float64
	ExclusionTerms   []string
}

// MatchingService scores candidate offers against the search query.
// Scoring is pure and stateless: the same inputs always produce the same
// score, independent of any concurrency machinery around it.
type MatchingService struct {
	threshold        float64
	overlapWeight    float64
	coverageBonus    float64
	exclusionPenalty float64
	exclusionTerms   map[string]bool
}

// NewMatchingService creates a matching service with the given configuration
func NewMatchingService(config MatchConfig) *MatchingService {
	threshold := config.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	overlapWeight := config.OverlapWeight
	if overlapWeight <= 0 {
		overlapWeight = defaultOverlapWeight
	}
	coverageBonus := config.CoverageBonus
	if coverageBonus <= 0 {
		coverageBonus = defaultCoverageBonus
	}
	exclusionPenalty := config.ExclusionPenalty
	if exclusionPenalty <= 0 {
		exclusionPenalty = defaultExclusionPenalty
	}

	terms := config.ExclusionTerms
	if len(terms) == 0 {
		terms = defaultExclusionTerms
	}
	exclusionTerms := make(map[string]bool, len(terms))
	for _, term := range terms {
		exclusionTerms[strings.ToLower(term)] = true
	}

	return &MatchingService{
		threshold:        threshold,
		overlapWeight:    overlapWeight,
		coverageBonus:    coverageBonus,
		exclusionPenalty: exclusionPenalty,
		exclusionTerms:   exclusionTerms,
	}
}

// Threshold returns the score below which offers are discarded
func (s *MatchingService) Threshold() float64 { return s.threshold }

// Score computes relevance of an offer name against the query text.
// Returns a value in [0,1]. The score is a weighted combination of
// query-token coverage, a bonus when every query token is covered, and
// a penalty when the offer name carries a category-exclusion token the
// query itself does not mention. Appending a query token that also
// appears in the offer name never lowers the score: coverage m/n rises
// to (m+1)/(n+1), full coverage stays full, and the penalty can only be
// lifted by a wider query, never introduced. An offer name identical to
// the query scores exactly 1.
func (s *MatchingService) Score(queryText, offerName string) float64 {
	queryNorm := normalizeForMatch(queryText)
	offerNorm := normalizeForMatch(offerName)

	if queryNorm == "" || offerNorm == "" {
		return 0
	}
	if queryNorm == offerNorm {
		return 1
	}

	queryTokens := tokenize(queryNorm)
	if len(queryTokens) == 0 {
		return 0
	}

	offerSet := make(map[string]bool)
	for _, token := range tokenize(offerNorm) {
		offerSet[token] = true
	}

	matched := 0
	querySet := make(map[string]bool, len(queryTokens))
	for _, token := range queryTokens {
		querySet[token] = true
		if offerSet[token] {
			matched++
		}
	}
	coverage := float64(matched) / float64(len(queryTokens))

	score := coverage * s.overlapWeight

	if matched == len(queryTokens) {
		score += s.coverageBonus
	}

	for token := range offerSet {
		if s.exclusionTerms[token] && !querySet[token] {
			score -= s.exclusionPenalty
			break
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// normalizeForMatch case-folds and strips punctuation, collapsing whitespace
func normalizeForMatch(s string) string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")
	return strings.Join(strings.Fields(cleaned), " ")
}

// tokenize splits normalized text into tokens, dropping stop words
func tokenize(s string) []string {
	words := strings.Fields(s)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if basicStopWords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}
