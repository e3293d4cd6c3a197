package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the
	// one making the request. API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrNoWorkerProfile indicates the acting user has no worker profile and
	// therefore cannot own listings.
	ErrNoWorkerProfile = errors.New("user has no worker profile")

	// ErrNumberIDExhausted indicates no free public number ID could be found
	// within the retry budget during listing creation.
	ErrNumberIDExhausted = errors.New("could not allocate a free listing number ID")
)
