package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/mkraus/go-unifi-classic/internal/retry"
	"github.com/mkraus/go-unifi-classic/observability"
)

// RetryConfig configures the transient-retry middleware.
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	Logger      observability.Logger
}

// Retry returns a middleware that retries transient failures with exponential
// backoff. It retries on network errors, 5xx responses, and 429 responses
// (respecting the Retry-After header).
//
// It never retries 4xx responses other than 429. In particular 401 passes
// through untouched so the executor's session renewal sees it on the first
// occurrence.
func Retry(cfg RetryConfig) func(http.RoundTripper) http.RoundTripper {
	if cfg.Logger == nil {
		cfg.Logger = observability.NoopLogger()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &retryTransport{
			next:        next,
			maxRetries:  cfg.MaxRetries,
			initialWait: cfg.InitialWait,
			logger:      cfg.Logger,
		}
	}
}

type retryTransport struct {
	next        http.RoundTripper
	maxRetries  int
	initialWait time.Duration
	logger      observability.Logger
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// Buffer the request body so it can be replayed
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, errors.Wrap(err, "failed to read request body")
		}
	}

	var lastErr error
	var lastResp *http.Response

	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		resp, err := t.next.RoundTrip(req)

		if err == nil && !retry.ShouldRetry(resp.StatusCode) {
			return resp, nil
		}

		lastErr = err
		lastResp = resp

		if attempt == t.maxRetries {
			break
		}

		t.logger.Warn("retrying request",
			observability.Field{Key: "attempt", Value: attempt + 1},
			observability.Field{Key: "max_retries", Value: t.maxRetries},
			observability.Field{Key: "method", Value: req.Method},
			observability.Field{Key: "path", Value: req.URL.Path},
		)

		waitTime := t.calculateWait(attempt, resp)

		select {
		case <-time.After(waitTime):
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "context canceled during retry wait")
		}

		if resp != nil {
			resp.Body.Close()
		}
	}

	if lastResp != nil {
		return lastResp, nil
	}

	return nil, errors.Wrapf(lastErr, "request failed after %d retries", t.maxRetries)
}

// calculateWait determines how long to wait before the next attempt.
// Exponential backoff (initialWait * 2^attempt) unless a 429 response
// carries a usable Retry-After header.
func (t *retryTransport) calculateWait(attempt int, resp *http.Response) time.Duration {
	if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		if wait := retry.ParseRetryAfter(resp.Header.Get("Retry-After")); wait > 0 {
			return wait
		}
	}

	return t.initialWait * time.Duration(1<<attempt)
}
