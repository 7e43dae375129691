package middleware

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/mkraus/go-unifi-classic/observability"
)

// RateLimit returns a middleware that applies token-bucket rate limiting to
// all outgoing requests. A nil limiter disables the middleware.
//
// Classic controllers on small hardware degrade badly under request bursts,
// so the client throttles before the controller has to.
func RateLimit(limiter *rate.Limiter, logger observability.Logger) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = observability.NoopLogger()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &rateLimitTransport{
			next:    next,
			limiter: limiter,
			logger:  logger,
		}
	}
}

type rateLimitTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
	logger  observability.Logger
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter == nil {
		//nolint:wrapcheck // Middleware passes through errors from next handler in chain
		return t.next.RoundTrip(req)
	}

	ctx := req.Context()

	reservation := t.limiter.Reserve()
	if !reservation.OK() {
		return nil, errors.New("rate limit reservation failed")
	}

	if delay := reservation.Delay(); delay > 0 {
		t.logger.Debug("rate limit delay",
			observability.Field{Key: "delay", Value: delay},
			observability.Field{Key: "path", Value: req.URL.Path},
		)

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			reservation.Cancel()
			return nil, errors.Wrap(ctx.Err(), "context canceled during rate limit wait")
		}
	}

	//nolint:wrapcheck // Middleware passes through errors from next handler in chain
	return t.next.RoundTrip(req)
}
