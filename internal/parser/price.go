package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numericGroupRegex finds the first run of digits with optional separators,
// so "US $1,299.00 to $1,499.00" yields "1,299.00".
var numericGroupRegex = regexp.MustCompile(`\d[\d.,]*`)

// ParsePrice extracts a positive decimal price from raw marketplace text.
// Currency symbols and thousands separators are stripped; both "1,299.00"
// and "1.299,00" styles are handled. Returns an error when no usable number
// remains, so callers can drop the single offer rather than the page.
func ParsePrice(text string) (decimal.Decimal, error) {
	raw := numericGroupRegex.FindString(text)
	if raw == "" {
		return decimal.Decimal{}, fmt.Errorf("no numeric price in %q", text)
	}

	normalized := normalizeSeparators(raw)
	price, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unparseable price %q: %w", raw, err)
	}
	if !price.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("non-positive price %q", raw)
	}
	return price, nil
}

// normalizeSeparators rewrites a localized number into plain decimal form.
// When both separators appear, the last one seen is the decimal point.
// A lone comma is decimal only when it is followed by at most two digits
// ("12,99"); otherwise it groups thousands ("1,23,456").
func normalizeSeparators(raw string) string {
	lastDot := strings.LastIndex(raw, ".")
	lastComma := strings.LastIndex(raw, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// European style: 1.299,00
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.Replace(raw, ",", ".", 1)
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case lastComma >= 0:
		if len(raw)-lastComma-1 <= 2 && strings.Count(raw, ",") == 1 {
			raw = strings.Replace(raw, ",", ".", 1)
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case strings.Count(raw, ".") > 1:
		// 1.299.000 with no comma: every dot groups thousands
		raw = strings.ReplaceAll(raw, ".", "")
	}

	return strings.TrimSuffix(raw, ".")
}
