package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNoCandidateMarkets is returned when the selected market IDs do not
	// resolve to any registered market
	ErrNoCandidateMarkets = errors.New("no candidate markets found")

	// ErrMarketNotFound is returned when a market ID is not in the catalog
	ErrMarketNotFound = errors.New("market not found")

	// ErrNoObservations is returned when the price feed has no usable
	// observations for a query (including non-2xx and malformed responses)
	ErrNoObservations = errors.New("no price observations found")

	// ErrPriceFeedFailure is returned when the price feed request fails
	ErrPriceFeedFailure = errors.New("price feed request failed")

	// ErrGeoNotConfigured is returned when no geo service credential is set
	ErrGeoNotConfigured = errors.New("geo service not configured")

	// ErrGeoCallFailed is returned when a live geo lookup fails
	ErrGeoCallFailed = errors.New("geo service call failed")

	// ErrNarrativeUnavailable is returned when the narrative advisor cannot
	// produce a usable rephrasing; callers keep the deterministic text
	ErrNarrativeUnavailable = errors.New("narrative advisor unavailable")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
