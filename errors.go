package unifi

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"github.com/cockroachdb/errors"
)

// CertificateError reports a TLS certificate that could not be verified,
// typically the controller's self-signed certificate. It is fatal: no retry
// or re-login can resolve it. Set Config.InsecureSkipVerify to accept the
// controller certificate instead.
type CertificateError struct {
	err error
}

func (e *CertificateError) Error() string {
	return fmt.Sprintf("controller certificate rejected: %v (set InsecureSkipVerify to accept self-signed certificates)", e.err)
}

func (e *CertificateError) Unwrap() error { return e.err }

// AuthError reports that the controller rejected the session or the login
// credentials, or that the login exchange itself failed in transit.
type AuthError struct {
	Reason string
	err    error
}

func (e *AuthError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.err)
	}
	return "authentication failed: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.err }

// APIError reports a non-auth HTTP failure from the controller. Status and
// body are preserved unchanged.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("controller returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("controller returned status %d", e.StatusCode)
}

// classifyTransportError distinguishes certificate failures from ordinary
// network faults. Certificate rejection gets its own type because neither a
// retry nor a fresh login can fix it.
func classifyTransportError(err error, msg string) error {
	if isCertificateError(err) {
		return &CertificateError{err: err}
	}
	return errors.Wrap(err, msg)
}

func isCertificateError(err error) bool {
	var verifyErr *tls.CertificateVerificationError
	if errors.As(err, &verifyErr) {
		return true
	}
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return true
	}
	var invalid x509.CertificateInvalidError
	if errors.As(err, &invalid) {
		return true
	}
	var hostname x509.HostnameError
	return errors.As(err, &hostname)
}
