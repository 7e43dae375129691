// Package middleware provides reusable HTTP middleware components.
package middleware

import (
	"net/http"
	"time"

	"github.com/mkraus/go-unifi-classic/observability"
)

// Logging returns a middleware that logs HTTP requests and their outcomes.
func Logging(logger observability.Logger) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = observability.NoopLogger()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &loggingTransport{
			next:   next,
			logger: logger,
		}
	}
}

type loggingTransport struct {
	next   http.RoundTripper
	logger observability.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	t.logger.Debug("http request started",
		observability.Field{Key: "method", Value: req.Method},
		observability.Field{Key: "path", Value: req.URL.Path},
	)

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		t.logger.Error("http request failed",
			observability.Field{Key: "method", Value: req.Method},
			observability.Field{Key: "path", Value: req.URL.Path},
			observability.Field{Key: "duration", Value: duration},
			observability.Field{Key: "error", Value: err.Error()},
		)
		//nolint:wrapcheck // Middleware passes through errors from next handler in chain
		return nil, err
	}

	t.logger.Debug("http request completed",
		observability.Field{Key: "method", Value: req.Method},
		observability.Field{Key: "path", Value: req.URL.Path},
		observability.Field{Key: "status", Value: resp.StatusCode},
		observability.Field{Key: "duration", Value: duration},
	)

	return resp, nil
}
