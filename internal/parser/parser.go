package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/pricescout/backend/internal/domain"
)

const maxTitleRunes = 100

var ratingRegex = regexp.MustCompile(`(\d+\.?\d*)`)

// Parser extracts offers from fetched marketplace pages. Extraction rules
// live in the profile dispatch table; Parser itself is stateless apart from
// the clock used for fetched-at timestamps.
type Parser struct {
	clock domain.Clock
}

// New creates a parser
func New(clock domain.Clock) *Parser {
	if clock == nil {
		clock = domain.RealClock()
	}
	return &Parser{clock: clock}
}

// Supported reports whether a parser profile id is in the dispatch table
func (p *Parser) Supported(profileID string) bool {
	_, ok := profiles[profileID]
	return ok
}

// Parse extracts offers from rawContent for one marketplace. An empty result
// is not an error: it means no known layout matched. A ParseError is returned
// only when the content itself signals a problem (challenge page, not HTML).
func (p *Parser) Parse(mp domain.MarketplaceProfile, rawContent string) ([]domain.Offer, error) {
	profile, ok := profiles[mp.ParserProfile]
	if !ok {
		return nil, &domain.ParseError{
			Marketplace: mp.ID,
			Reason:      domain.ParseReasonBadContent,
			Detail:      fmt.Sprintf("no profile %q", mp.ParserProfile),
		}
	}

	if marker := blockedBy(rawContent); marker != "" {
		return nil, &domain.ParseError{
			Marketplace: mp.ID,
			Reason:      domain.ParseReasonBlocked,
			Detail:      fmt.Sprintf("challenge page detected (%q)", marker),
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawContent))
	if err != nil {
		return nil, &domain.ParseError{
			Marketplace: mp.ID,
			Reason:      domain.ParseReasonBadContent,
			Detail:      err.Error(),
		}
	}

	for _, selector := range profile.ResultSelectors {
		containers := doc.Find(selector)
		if containers.Length() == 0 {
			continue
		}
		if offers := p.extract(mp, profile, containers); len(offers) > 0 {
			return offers, nil
		}
	}

	return nil, nil
}

// extract walks listing containers, dropping any that lack a usable title,
// price or link. A single malformed listing never fails the page.
func (p *Parser) extract(mp domain.MarketplaceProfile, profile Profile, containers *goquery.Selection) []domain.Offer {
	var offers []domain.Offer
	fetchedAt := p.clock.Now()

	containers.EachWithBreak(func(_ int, container *goquery.Selection) bool {
		title := firstTitle(container, profile.TitleSelectors)
		if title == "" || skipTitle(profile, title) {
			return true
		}

		price, ok := firstPrice(container, profile.PriceSelectors)
		if !ok {
			return true
		}

		link := firstLink(container, profile.LinkSelectors, mp.Domain)
		if link == "" {
			return true
		}

		offer := domain.Offer{
			Marketplace:  mp.ID,
			Name:         truncate(title, maxTitleRunes),
			Price:        price,
			Currency:     mp.Currency,
			Link:         link,
			Availability: "Available",
			FetchedAt:    fetchedAt,
		}

		if profile.RatingSelector != "" {
			if rating, ok := parseRating(container.Find(profile.RatingSelector).First().Text()); ok {
				offer.Rating = &rating
			}
		}

		if profile.ShippingSelector != "" {
			shippingText := strings.TrimSpace(container.Find(profile.ShippingSelector).First().Text())
			if shippingText != "" && !strings.Contains(strings.ToLower(shippingText), "free") {
				if cost, err := ParsePrice(shippingText); err == nil {
					offer.ShippingCost = &cost
				}
			}
		}

		if profile.ConditionSelector != "" {
			condition := strings.ToLower(container.Find(profile.ConditionSelector).First().Text())
			if strings.Contains(condition, "sold") {
				offer.Availability = "Sold"
			}
		}

		offers = append(offers, offer)
		return len(offers) < profile.MaxResults
	})

	return offers
}

// firstTitle tries title selectors in order, preferring a title attribute
// over element text (Flipkart puts the full name in the attribute).
func firstTitle(container *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		elem := container.Find(sel).First()
		if elem.Length() == 0 {
			continue
		}
		if attr, ok := elem.Attr("title"); ok && strings.TrimSpace(attr) != "" {
			return strings.TrimSpace(attr)
		}
		if text := strings.TrimSpace(elem.Text()); text != "" {
			return text
		}
	}
	return ""
}

func firstPrice(container *goquery.Selection, selectors []string) (decimal.Decimal, bool) {
	for _, sel := range selectors {
		text := strings.TrimSpace(container.Find(sel).First().Text())
		if text == "" {
			continue
		}
		if parsed, err := ParsePrice(text); err == nil {
			return parsed, true
		}
	}
	return decimal.Decimal{}, false
}

func firstLink(container *goquery.Selection, selectors []string, domainName string) string {
	for _, sel := range selectors {
		href, exists := container.Find(sel).First().Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			continue
		}
		return absoluteURL(domainName, strings.TrimSpace(href))
	}
	return ""
}

// absoluteURL resolves a possibly relative href against the marketplace domain
func absoluteURL(domainName, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	base := &url.URL{Scheme: "https", Host: domainName}
	return base.ResolveReference(ref).String()
}

func parseRating(text string) (float64, bool) {
	match := ratingRegex.FindString(text)
	if match == "" {
		return 0, false
	}
	rating, err := strconv.ParseFloat(match, 64)
	if err != nil || rating < 0 || rating > 5 {
		return 0, false
	}
	return rating, true
}

func skipTitle(profile Profile, title string) bool {
	lower := strings.ToLower(title)
	for _, prefix := range profile.SkipTitlePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func blockedBy(content string) string {
	lower := strings.ToLower(content)
	for _, marker := range blockMarkers {
		if strings.Contains(lower, marker) {
			return marker
		}
	}
	return ""
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
