package parser

// Profile describes how offers are extracted from one marketplace's search
// results page. Selector lists are tried in priority order because every
// site ships several live layouts at once.
type Profile struct {
	ID                string
	ResultSelectors   []string // candidate containers for one listing each
	TitleSelectors    []string
	PriceSelectors    []string
	LinkSelectors     []string
	RatingSelector    string
	ShippingSelector  string
	ConditionSelector string   // availability hints, e.g. eBay sold listings
	SkipTitlePrefixes []string // placeholder rows to drop
	MaxResults        int
}

// profiles is the dispatch table keyed by parser profile id
var profiles = map[string]Profile{
	"amazon": {
		ID: "amazon",
		ResultSelectors: []string{
			`[data-component-type="s-search-result"]`,
			`.s-result-item[data-asin]`,
			`.sg-col-inner .s-widget-container`,
		},
		TitleSelectors: []string{
			`h2 a span`,
			`h2 .a-link-normal`,
			`.s-link-style a h2`,
			`[data-cy="title-recipe-link"]`,
		},
		PriceSelectors: []string{
			`.a-price .a-offscreen`,
			`.a-price-whole`,
			`.a-price-range .a-price .a-offscreen`,
		},
		LinkSelectors:  []string{`h2 a`, `.s-link-style a`},
		RatingSelector: `.a-icon-alt`,
		MaxResults:     8,
	},
	"ebay": {
		ID:              "ebay",
		ResultSelectors: []string{`.s-item`},
		TitleSelectors:  []string{`.s-item__title`},
		PriceSelectors: []string{
			`.s-item__price .notranslate`,
			`.s-item__price`,
		},
		LinkSelectors:     []string{`.s-item__link`},
		ShippingSelector:  `.s-item__shipping`,
		ConditionSelector: `.s-item__subtitle`,
		SkipTitlePrefixes: []string{"shop on ebay"},
		MaxResults:        6,
	},
	"walmart": {
		ID: "walmart",
		ResultSelectors: []string{
			`[data-testid="item-stack"]`,
			`[data-automation-id="product-tile"]`,
			`.mb1.ph1.pa0-xl.bb.b--near-white.w-25`,
		},
		TitleSelectors: []string{
			`[data-automation-id="product-title"]`,
			`[data-testid="product-title"]`,
		},
		PriceSelectors: []string{
			`[data-automation-id="product-price"] .w_iUH7`,
			`.f2.b.lh-copy.dark-gray`,
		},
		LinkSelectors: []string{`a[href*="/ip/"]`},
		MaxResults:    6,
	},
	"flipkart": {
		ID:              "flipkart",
		ResultSelectors: []string{`[data-id]`},
		TitleSelectors:  []string{`a[title]`, `.IRpwTa`},
		PriceSelectors:  []string{`._30jeq3`, `._1_WHN1`},
		LinkSelectors:   []string{`a[href*="/p/"]`},
		RatingSelector:  `._3LWZlK`,
		MaxResults:      6,
	},
	"target": {
		ID:              "target",
		ResultSelectors: []string{`[data-test="product-details"]`},
		TitleSelectors:  []string{`[data-test="product-title"]`},
		PriceSelectors:  []string{`[data-test="product-price"]`},
		LinkSelectors:   []string{`a[href*="/p/"]`},
		MaxResults:      6,
	},
}

// blockMarkers are phrases that mean a challenge page was served instead of
// search results. Matched case-insensitively against the raw content.
var blockMarkers = []string{
	"captcha",
	"robot check",
	"access denied",
	"unusual traffic",
	"are you a human",
	"pardon our interruption",
	"request blocked",
}
