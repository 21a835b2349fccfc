package scholar

import (
	"errors"
	"fmt"
)

// Common errors returned by the search client.
var (
	// ErrExhausted signals the normal end of a candidate stream. It is the
	// expected terminal outcome of a search, not a failure.
	ErrExhausted = errors.New("search results exhausted")

	// ErrAuthError indicates an authentication error (missing/invalid API key).
	ErrAuthError = errors.New("search authentication error")

	// ErrRateLimited indicates the rate limit has been exceeded.
	ErrRateLimited = errors.New("search rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with search API")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from search API")
)

// APIError represents an error response from the search API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("search API error (status %d): %s", e.StatusCode, e.Message)
}

// IsExhausted returns true if the error is the normal end-of-results signal.
func IsExhausted(err error) bool {
	return errors.Is(err, ErrExhausted)
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
