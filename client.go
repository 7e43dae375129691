// Package unifi is a client for the classic, cookie-authenticated UniFi
// controller API. It handles the login/renewal session protocol, the stat
// and list endpoints under /api/s/{site}, and the controller's websocket
// push-event stream.
package unifi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/mkraus/go-unifi-classic/internal/httpclient"
	"github.com/mkraus/go-unifi-classic/internal/middleware"
	"github.com/mkraus/go-unifi-classic/internal/ratelimit"
	"github.com/mkraus/go-unifi-classic/observability"
)

const (
	// DefaultSite is the site name every controller ships with.
	DefaultSite = "default"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// sessionCookie carries the session token issued at login.
	sessionCookie = "unifises"
	// csrfCookie carries the anti-forgery token issued at login.
	csrfCookie = "csrf_token"
	// csrfHeader re-presents the anti-forgery token on requests.
	csrfHeader = "X-Csrf-Token"

	loginPath = "/api/login"
)

// Client talks to one classic UniFi controller. It owns the session
// credentials and renews them transparently when the controller expires
// the cookie.
type Client struct {
	baseURL *url.URL
	site    string
	user    string
	pass    string

	http     *httpclient.Client
	insecure bool
	session  *session
	logger   observability.Logger
}

// Config holds configuration for the controller client.
type Config struct {
	// BaseURL is the controller URL (e.g. "https://unifi.local:8443").
	BaseURL string

	// Username and Password are the controller login credentials.
	Username string
	Password string

	// Site selects the site collection (defaults to "default").
	Site string

	// InsecureSkipVerify disables TLS certificate verification. Required
	// for controllers running their factory self-signed certificate.
	InsecureSkipVerify bool

	// Timeout sets the HTTP client timeout (defaults to 30s). It does not
	// apply to the event stream, whose lifetime is open-ended.
	Timeout time.Duration

	// RateLimitPerMinute throttles outgoing requests (0 disables).
	RateLimitPerMinute int

	// TransientRetries enables retrying 5xx/429 responses up to this many
	// times. Off by default: outside session renewal, failures propagate
	// to the caller unchanged.
	TransientRetries int

	// Logger receives diagnostics (defaults to a noop logger).
	Logger observability.Logger
}

// New creates a client with default settings for the given controller.
func New(baseURL, username, password string) (*Client, error) {
	return NewWithConfig(&Config{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
	})
}

// NewWithConfig creates a client with custom configuration.
func NewWithConfig(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("controller URL is required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("username and password are required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid controller URL")
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.Newf("unsupported controller URL scheme %q", base.Scheme)
	}

	site := cfg.Site
	if site == "" {
		site = DefaultSite
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NoopLogger()
	}

	mw := []httpclient.Middleware{
		middleware.Logging(logger),
	}
	if cfg.RateLimitPerMinute > 0 {
		mw = append(mw, middleware.RateLimit(ratelimit.NewRateLimiter(cfg.RateLimitPerMinute), logger))
	}
	if cfg.TransientRetries > 0 {
		mw = append(mw, middleware.Retry(middleware.RetryConfig{
			MaxRetries:  cfg.TransientRetries,
			InitialWait: time.Second,
			Logger:      logger,
		}))
	}
	if cfg.InsecureSkipVerify {
		mw = append(mw, middleware.TLSConfig(middleware.InsecureSkipVerify()))
	}

	return &Client{
		baseURL:  base,
		site:     site,
		user:     cfg.Username,
		pass:     cfg.Password,
		insecure: cfg.InsecureSkipVerify,
		http: httpclient.New(
			httpclient.WithTimeout(timeout),
			httpclient.WithMiddleware(mw...),
		),
		session: &session{},
		logger:  logger,
	}, nil
}

// Site returns the site collection this client is scoped to.
func (c *Client) Site() string { return c.site }

// pendingRequest captures one request so a credential-expiry replay reuses
// the exact original method, path, and body. Only credential headers are
// refreshed on replay.
type pendingRequest struct {
	method string
	path   string
	body   []byte
}

type rawResponse struct {
	status int
	body   []byte
}

// do issues one authenticated request. On a 401 it renews the session and
// replays the identical request exactly once; the replay's outcome is final.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	pr := pendingRequest{method: method, path: path, body: body}

	resp, err := c.send(ctx, pr)
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusUnauthorized {
		if !c.session.beginLogin() {
			// Another caller's login is already in flight. Fail fast
			// rather than queue behind an attempt that may itself fail.
			return nil, &AuthError{Reason: "session rejected while another login is in flight"}
		}

		c.logger.Debug("session expired, renewing",
			observability.Field{Key: "path", Value: path},
		)
		if err := c.login(ctx); err != nil {
			return nil, err
		}

		resp, err = c.send(ctx, pr)
		if err != nil {
			return nil, err
		}
		if resp.status == http.StatusUnauthorized {
			return nil, &AuthError{Reason: "session rejected after renewed login"}
		}
	}

	if resp.status < http.StatusOK || resp.status >= http.StatusMultipleChoices {
		return nil, &APIError{StatusCode: resp.status, Body: resp.body}
	}

	return resp.body, nil
}

// send issues the captured request once, attaching credential headers from
// the current session snapshot.
func (c *Client) send(ctx context.Context, pr pendingRequest) (*rawResponse, error) {
	var reqBody io.Reader
	if pr.body != nil {
		reqBody = bytes.NewReader(pr.body)
	}

	req, err := http.NewRequestWithContext(ctx, pr.method, c.apiURL(pr.path), reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if pr.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token, csrf, ok := c.session.credentials(); ok {
		if token != "" {
			req.Header.Set("Cookie", sessionCookie+"="+token)
		}
		if csrf != "" {
			req.Header.Set(csrfHeader, csrf)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, "request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	return &rawResponse{status: resp.StatusCode, body: respBody}, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// Login authenticates against the controller and stores the issued session
// and anti-forgery tokens. It is called automatically on credential expiry;
// calling it up front is optional. If another login is already in flight it
// fails immediately instead of starting a parallel attempt.
func (c *Client) Login(ctx context.Context) error {
	if !c.session.beginLogin() {
		return &AuthError{Reason: "another login attempt is in flight"}
	}
	return c.login(ctx)
}

// login runs the credential exchange. The caller must have claimed the
// single-flight guard; login releases it unconditionally via finishLogin.
func (c *Client) login(ctx context.Context) error {
	var token, csrf string
	ok := false
	defer func() { c.session.finishLogin(token, csrf, ok) }()

	payload, err := json.Marshal(loginRequest{
		Username: c.user,
		Password: c.pass,
		Remember: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode login request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL(loginPath), bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to build login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isCertificateError(err) {
			return &CertificateError{err: err}
		}
		return &AuthError{Reason: "login request failed", err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &AuthError{Reason: "controller rejected credentials: status=" + resp.Status}
	}

	// The two cookies are extracted independently: some deployments omit
	// the anti-forgery token, some front-proxies strip the session cookie.
	for _, ck := range resp.Cookies() {
		switch ck.Name {
		case sessionCookie:
			token = ck.Value
		case csrfCookie:
			csrf = ck.Value
		}
	}

	ok = true
	c.logger.Info("logged in to controller",
		observability.Field{Key: "site", Value: c.site},
		observability.Field{Key: "has_csrf", Value: csrf != ""},
	)
	return nil
}

// apiURL joins an /api path onto the controller base URL.
func (c *Client) apiURL(path string) string {
	return c.baseURL.String() + path
}

// sitePath builds an endpoint path scoped to the configured site.
func (c *Client) sitePath(endpoint string) string {
	return "/api/s/" + url.PathEscape(c.site) + endpoint
}
