// Package ratelimit builds token-bucket limiters for controller requests.
package ratelimit

import "golang.org/x/time/rate"

// NewRateLimiter creates a rate limiter with the specified requests per minute.
// Tokens replenish continuously at requestsPerMinute/60 per second, with a
// burst capacity equal to requestsPerMinute.
func NewRateLimiter(requestsPerMinute int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute)
}
