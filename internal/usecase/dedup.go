package usecase

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pricescout/backend/internal/domain"
)

const (
	dedupeNamePrefixRunes = 50
	dedupeNameMaxDistance = 3
)

// priceTolerance is the relative price gap under which two near-identical
// listings count as the same offer (marketplaces re-list the same item with
// rounding differences).
var priceTolerance = decimal.NewFromFloat(0.01)

// Dedupe collapses offers that refer to the same listing. Two offers are the
// same listing when they come from the same marketplace and either share a
// canonical link, or carry near-identical names with prices inside the
// tolerance. The survivor is the higher-scored offer; on equal scores the
// first one encountered stays, so input order decides. Running Dedupe on an
// already deduplicated slice returns it unchanged.
//
// The same-listing relation is not transitive (link match vs name match), so
// a single pass can leave a pair mergeable only through a replaced survivor.
// Merging runs to a fixpoint; each pass only shrinks the slice, so it
// terminates, and a pass that merges nothing returns its input unchanged.
func Dedupe(offers []domain.MatchedOffer) []domain.MatchedOffer {
	kept := mergeOnce(offers)
	for {
		next := mergeOnce(kept)
		if len(next) == len(kept) {
			return next
		}
		kept = next
	}
}

func mergeOnce(offers []domain.MatchedOffer) []domain.MatchedOffer {
	kept := make([]domain.MatchedOffer, 0, len(offers))

	for _, candidate := range offers {
		merged := false
		for i := range kept {
			if !sameListing(kept[i], candidate) {
				continue
			}
			if candidate.Score > kept[i].Score {
				kept[i] = candidate
			}
			merged = true
			break
		}
		if !merged {
			kept = append(kept, candidate)
		}
	}

	return kept
}

func sameListing(a, b domain.MatchedOffer) bool {
	if a.Marketplace != b.Marketplace {
		return false
	}
	if canonicalLink(a.Link) == canonicalLink(b.Link) {
		return true
	}
	return nearIdenticalName(a.Name, b.Name) && priceWithinTolerance(a.Price, b.Price)
}

// canonicalLink strips tracking noise so the same listing reached through
// different search placements compares equal. Query string and fragment go;
// scheme, host and path stay.
func canonicalLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/")
}

// nearIdenticalName compares normalized name prefixes, allowing a few edits
// for stray punctuation or emoji the normalization did not fold away.
func nearIdenticalName(a, b string) bool {
	prefixA := namePrefix(a)
	prefixB := namePrefix(b)
	if prefixA == prefixB {
		return true
	}
	return levenshtein(prefixA, prefixB) <= dedupeNameMaxDistance
}

func namePrefix(name string) string {
	runes := []rune(normalizeForMatch(name))
	if len(runes) > dedupeNamePrefixRunes {
		runes = runes[:dedupeNamePrefixRunes]
	}
	return string(runes)
}

func priceWithinTolerance(a, b decimal.Decimal) bool {
	larger := a
	if b.GreaterThan(larger) {
		larger = b
	}
	if larger.IsZero() {
		return true
	}
	return a.Sub(b).Abs().LessThanOrEqual(larger.Mul(priceTolerance))
}

// levenshtein computes edit distance over runes with the two-row method
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
