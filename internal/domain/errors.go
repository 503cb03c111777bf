package domain

import "errors"

var (
	// ErrFetchFailed is returned when a retailer page cannot be fetched
	ErrFetchFailed = errors.New("page fetch failed")

	// ErrBotBlocked is returned when the retailer serves a captcha challenge
	// instead of the requested page
	ErrBotBlocked = errors.New("blocked by retailer anti-bot check")

	// ErrProductNotFound is returned when a page yields no extractable product
	ErrProductNotFound = errors.New("no product found on page")

	// ErrNoProductsFound is returned when an entire batch produces zero valid
	// items; it is the only batch-level error the pipeline surfaces
	ErrNoProductsFound = errors.New("no products could be extracted")

	// ErrLowConfidence is returned when the best cross-retailer candidate
	// scores below the match threshold
	ErrLowConfidence = errors.New("match confidence below threshold")

	// ErrNoCandidates is returned when a secondary retailer search yields
	// zero candidate listings
	ErrNoCandidates = errors.New("no match candidates found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
