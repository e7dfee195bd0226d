package domain

import "errors"

// Failure kinds surfaced to API callers. Fetch and parse packages define
// their own sentinels; the extractor wraps them into one of these so the
// handler layer can map a kind to an HTTP status without inspecting
// strategy internals.
var (
	ErrInvalidURL          = errors.New("invalid_url")
	ErrFetchTimeout        = errors.New("fetch_timeout")
	ErrFetchBlocked        = errors.New("fetch_blocked")
	ErrFetchNetwork        = errors.New("fetch_network")
	ErrParseMissingField   = errors.New("parse_missing_field")
	ErrParseMalformed      = errors.New("parse_malformed")
	ErrExtractionExhausted = errors.New("extraction_exhausted")
	ErrRateUnavailable     = errors.New("rate_unavailable")
	ErrListingFailed       = errors.New("listing_failed")
)

// Code returns the machine-readable error code for a failure, or
// "internal_error" when the error is not part of the taxonomy.
func Code(err error) string {
	for _, kind := range []error{
		ErrInvalidURL,
		ErrFetchTimeout,
		ErrFetchBlocked,
		ErrFetchNetwork,
		ErrParseMissingField,
		ErrParseMalformed,
		ErrExtractionExhausted,
		ErrRateUnavailable,
		ErrListingFailed,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal_error"
}
