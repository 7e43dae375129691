package unifi

import "sync"

// session holds the credential material for one controller login: the
// unifises session cookie and the csrf_token anti-forgery value, plus the
// single-flight guard that keeps concurrent logins from racing.
//
// session is a guarded value holder. It does no I/O and is mutated only by
// the login routine; everything else reads snapshots.
type session struct {
	mu            sync.Mutex
	token         string
	csrf          string
	loginInFlight bool
}

// credentials returns a snapshot of the stored credentials.
// ok is false before the first successful login.
func (s *session) credentials() (token, csrf string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.csrf, s.token != "" || s.csrf != ""
}

// beginLogin atomically claims the single-flight guard. It returns true and
// marks a login in flight iff no other login is running; exactly one caller
// wins per cycle. Losers must not start a parallel login.
func (s *session) beginLogin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loginInFlight {
		return false
	}
	s.loginInFlight = true
	return true
}

// finishLogin releases the single-flight guard. On success the stored
// credentials are overwritten, never merged; either value may be empty since
// some controller deployments omit one of the two cookies. On failure the
// previous credentials are left as they were.
func (s *session) finishLogin(token, csrf string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.token = token
		s.csrf = csrf
	}
	s.loginInFlight = false
}
