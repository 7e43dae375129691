// Package retry classifies HTTP responses for transient-failure retry.
package retry

import (
	"strconv"
	"time"
)

// ShouldRetry returns true if the HTTP status code indicates a transient,
// retryable condition:
//   - 429 (Too Many Requests) - controller-side throttling
//   - 5xx (Server Errors) - temporary controller issues
//
// Authentication failures (401) are never retried here: session renewal is
// handled by the request executor, not the transport.
func ShouldRetry(statusCode int) bool {
	return statusCode >= 500 || statusCode == 429
}

// ParseRetryAfter parses the Retry-After HTTP header and returns the duration
// to wait. Only the seconds form (e.g. "120") is supported; HTTP-dates and
// unparseable values return 0.
func ParseRetryAfter(retryAfterHeader string) time.Duration {
	if retryAfterHeader == "" {
		return 0
	}

	seconds, err := strconv.Atoi(retryAfterHeader)
	if err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}

	return 0
}
