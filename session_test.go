package unifi

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCredentialsEmpty(t *testing.T) {
	t.Parallel()

	s := &session{}
	_, _, ok := s.credentials()
	assert.False(t, ok, "fresh session must report no credentials")
}

func TestSessionBeginLoginExclusive(t *testing.T) {
	t.Parallel()

	s := &session{}
	require.True(t, s.beginLogin())
	assert.False(t, s.beginLogin(), "second begin must lose while login is in flight")

	s.finishLogin("", "", false)
	assert.True(t, s.beginLogin(), "guard must be reusable after finish")
}

func TestSessionBeginLoginConcurrent(t *testing.T) {
	t.Parallel()

	s := &session{}

	const goroutines = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	start := make(chan struct{})
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if s.beginLogin() {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, winners, "exactly one goroutine may claim the login guard")
}

func TestSessionFinishLoginStoresCredentials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		token     string
		csrf      string
		ok        bool
		wantToken string
		wantCSRF  string
		wantOK    bool
	}{
		{
			name:  "success stores both",
			token: "tok", csrf: "csrf", ok: true,
			wantToken: "tok", wantCSRF: "csrf", wantOK: true,
		},
		{
			name:  "success with missing csrf",
			token: "tok", csrf: "", ok: true,
			wantToken: "tok", wantCSRF: "", wantOK: true,
		},
		{
			name:  "failure leaves session empty",
			token: "tok", csrf: "csrf", ok: false,
			wantToken: "", wantCSRF: "", wantOK: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := &session{}
			require.True(t, s.beginLogin())
			s.finishLogin(tt.token, tt.csrf, tt.ok)

			token, csrf, ok := s.credentials()
			assert.Equal(t, tt.wantToken, token)
			assert.Equal(t, tt.wantCSRF, csrf)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestSessionFinishLoginOverwrites(t *testing.T) {
	t.Parallel()

	s := &session{}
	require.True(t, s.beginLogin())
	s.finishLogin("old-token", "old-csrf", true)

	require.True(t, s.beginLogin())
	s.finishLogin("new-token", "", true)

	token, csrf, ok := s.credentials()
	require.True(t, ok)
	assert.Equal(t, "new-token", token)
	assert.Empty(t, csrf, "credentials are overwritten, never merged")
}
