package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedCountry is returned when no marketplaces are registered for a country code
	ErrUnsupportedCountry = errors.New("unsupported country code")

	// ErrInvalidQuery is returned when the search query is empty or out of bounds
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrUnknownParserProfile is returned when a marketplace references a profile
	// that is not in the parser dispatch table. Fatal at startup validation.
	ErrUnknownParserProfile = errors.New("unknown parser profile")
)

// FetchErrorKind classifies transport-level failures
type FetchErrorKind int

const (
	FetchTimeout FetchErrorKind = iota
	FetchNetwork
	FetchHTTP
)

// FetchError is a typed failure from the fetch collaborator.
// Always recoverable: a failed fetch contributes zero offers to a run.
type FetchError struct {
	URL    string
	Kind   FetchErrorKind
	Status int // HTTP status, set only for FetchHTTP
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchTimeout:
		return fmt.Sprintf("fetch timeout: %s", e.URL)
	case FetchHTTP:
		return fmt.Sprintf("fetch failed with status %d: %s", e.Status, e.URL)
	default:
		return fmt.Sprintf("fetch network error: %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Parse failure reasons
const (
	ParseReasonBlocked    = "blocked"     // challenge/captcha page served instead of results
	ParseReasonBadContent = "bad_content" // content was not parseable HTML
)

// ParseError is a per-marketplace extraction failure.
// Never propagated as a hard failure; logged and counted by the aggregator.
type ParseError struct {
	Marketplace string
	Reason      string
	Detail      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s (%s): %s", e.Marketplace, e.Reason, e.Detail)
}
