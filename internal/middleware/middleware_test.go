package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRetryRecoversFromServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(body), "retried request must replay the body")

		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	transport := Retry(RetryConfig{
		MaxRetries:  3,
		InitialWait: time.Millisecond,
	})(http.DefaultTransport)
	client := &http.Client{Transport: transport}

	resp, err := client.Post(srv.URL, "text/plain", strings.NewReader("payload"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryPassesThroughAuthFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	transport := Retry(RetryConfig{
		MaxRetries:  3,
		InitialWait: time.Millisecond,
	})(http.DefaultTransport)
	client := &http.Client{Transport: transport}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load(), "401 must reach the executor on first occurrence")
}

func TestRetryExhaustionReturnsLastResponse(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	transport := Retry(RetryConfig{
		MaxRetries:  2,
		InitialWait: time.Millisecond,
	})(http.DefaultTransport)
	client := &http.Client{Transport: transport}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRateLimitNilLimiterPassesThrough(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	transport := RateLimit(nil, nil)(http.DefaultTransport)
	client := &http.Client{Transport: transport}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimitDelaysRequests(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// 1 token burst, ~20 req/s refill: the second request must wait.
	limiter := rate.NewLimiter(20, 1)
	transport := RateLimit(limiter, nil)(http.DefaultTransport)
	client := &http.Client{Transport: transport}

	start := time.Now()
	for i := 0; i < 2; i++ {
		resp, err := client.Get(srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestTLSConfigAppliedToTransport(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	transport := TLSConfig(InsecureSkipVerify())(http.DefaultTransport)
	client := &http.Client{Transport: transport}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err, "insecure config must accept the self-signed test certificate")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
