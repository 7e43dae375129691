package middleware

import (
	"crypto/tls"
	"net/http"
)

// TLSConfig returns a middleware that configures TLS for HTTPS connections.
// Classic controllers ship with self-signed certificates, so callers commonly
// pair this with InsecureSkipVerify.
func TLSConfig(config *tls.Config) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		transport, ok := next.(*http.Transport)
		if !ok {
			defaultTransport, ok := http.DefaultTransport.(*http.Transport)
			if !ok {
				// Should never happen, but handle gracefully
				return next
			}
			transport = defaultTransport.Clone()
			transport.ForceAttemptHTTP2 = true
		} else {
			transport = transport.Clone()
		}

		transport.TLSClientConfig = config

		return transport
	}
}

// InsecureSkipVerify returns a TLS config that skips certificate verification.
// WARNING: only for controllers using self-signed certificates on trusted
// networks. Never use against hosts you do not control.
func InsecureSkipVerify() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true, //nolint:gosec // This is an opt-in feature for self-signed controllers
	}
}
