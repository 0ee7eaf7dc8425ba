package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pricescout/backend/internal/domain"
)

const (
	minQueryRunes = 2
	maxQueryRunes = 100
)

// NormalizeQuery validates raw user input and produces the canonical query.
// Whitespace is trimmed and collapsed, the country code is upper-cased, and
// Text carries the case-folded form used for cache keys and match scoring.
// Raw keeps the user's casing for marketplace search URLs.
func NormalizeQuery(raw, country string) (domain.Query, error) {
	trimmed := strings.Join(strings.Fields(raw), " ")

	length := utf8.RuneCountInString(trimmed)
	if length < minQueryRunes {
		return domain.Query{}, fmt.Errorf("%w: at least %d characters required", domain.ErrInvalidQuery, minQueryRunes)
	}
	if length > maxQueryRunes {
		return domain.Query{}, fmt.Errorf("%w: at most %d characters allowed", domain.ErrInvalidQuery, maxQueryRunes)
	}

	return domain.Query{
		Raw:     trimmed,
		Text:    strings.ToLower(trimmed),
		Country: strings.ToUpper(strings.TrimSpace(country)),
	}, nil
}
