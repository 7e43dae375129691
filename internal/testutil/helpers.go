// Package testutil provides mock controller servers for tests.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// LoginHandler returns a handler for the controller login endpoint that
// issues the given session and anti-forgery cookies. Empty values omit the
// corresponding cookie, mirroring deployments that only issue one of the two.
func LoginHandler(t *testing.T, token, csrf string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method, "login must be a POST")

		if token != "" {
			http.SetCookie(w, &http.Cookie{Name: "unifises", Value: token, Path: "/"})
		}
		if csrf != "" {
			http.SetCookie(w, &http.Cookie{Name: "csrf_token", Value: csrf, Path: "/"})
		}
		WriteEnvelope(t, w, `[]`)
	}
}

// WriteEnvelope writes a successful classic controller response wrapping the
// given JSON data payload.
func WriteEnvelope(t *testing.T, w http.ResponseWriter, dataJSON string) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	_, err := fmt.Fprintf(w, `{"meta":{"rc":"ok"},"data":%s}`, dataJSON)
	require.NoError(t, err, "Failed to write response body")
}

// NewControllerServer creates a test controller with per-path handlers.
// Paths without a handler get a 404 and fail the test.
func NewControllerServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("Unexpected request path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		handler(w, r)
	}))
}
