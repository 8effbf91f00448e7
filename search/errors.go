package search

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDomain is returned when no public suffix can be found for the target
	ErrInvalidDomain = errors.New("invalid domain")
	// ErrNoCredentials is returned when a run is started without any token
	ErrNoCredentials = errors.New("no GitHub tokens configured")
	// ErrPoolEmpty signals that every token of the pool has been discarded
	ErrPoolEmpty = errors.New("token pool exhausted")
	// ErrAPI is matched by every error reported in a GitHub API response body
	ErrAPI = errors.New("github api error")
	// ErrRateLimited is matched when a throttled request could not be retried
	ErrRateLimited = errors.New("github rate limited")
	// ErrNetwork covers timeouts, connection failures and undecodable bodies
	ErrNetwork = errors.New("network error")
)

// APIError carries the message GitHub returned for a rejected request
type APIError struct {
	Status           int
	Message          string
	DocumentationURL string
	RateLimited      bool
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("github api error (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("github api error (HTTP %d): %s", e.Status, e.Message)
}

// Is lets errors.Is match ErrAPI, and ErrRateLimited for throttled responses
func (e *APIError) Is(target error) bool {
	return target == ErrAPI || (e.RateLimited && target == ErrRateLimited)
}
