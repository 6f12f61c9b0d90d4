package client

import (
	"strings"
	"sync"
	"time"

	"github.com/salonstack/authgate/token"
)

// RefreshWindow is how close to expiry a stored token is considered due
// for refresh. Five minutes gives the server-side reissue path several
// request cycles to deliver a replacement before the token actually dies.
const RefreshWindow = 5 * time.Minute

// TokenStore holds the bearer token on the client side of the protocol.
// It never verifies signatures; expiry is read straight from the payload
// so the client can drop a dead token without a round trip. All methods
// are safe for concurrent use.
type TokenStore struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	now func() time.Time
}

// StoreOption adjusts TokenStore construction.
type StoreOption func(*TokenStore)

// WithStoreClock replaces the wall clock.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *TokenStore) { s.now = now }
}

func NewTokenStore(opts ...StoreOption) *TokenStore {
	s := &TokenStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores a token. When expiresIn is positive it fixes the expiry;
// otherwise the expiry is decoded from the token's exp claim. A token
// whose payload cannot be decoded is stored without an expiry and
// treated as valid until the server rejects it.
func (s *TokenStore) Set(tok string, expiresIn time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = tok
	switch {
	case expiresIn > 0:
		s.expiresAt = s.now().Add(expiresIn)
	default:
		if exp := payloadExpiry(tok); exp > 0 {
			s.expiresAt = time.Unix(exp, 0)
		} else {
			s.expiresAt = time.Time{}
		}
	}
}

// Token returns the stored token and whether it is still usable. Expired
// tokens are reported as absent but not cleared; Clear is the caller's
// decision.
func (s *TokenStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", false
	}
	if !s.expiresAt.IsZero() && !s.expiresAt.After(s.now()) {
		return "", false
	}
	return s.token, true
}

// ShouldRefresh reports whether the stored token is inside the refresh
// window. Tokens without a known expiry never request refresh.
func (s *TokenStore) ShouldRefresh() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" || s.expiresAt.IsZero() {
		return false
	}
	return s.expiresAt.Sub(s.now()) <= RefreshWindow
}

// ExpiresAt returns the stored expiry, zero when unknown.
func (s *TokenStore) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Clear drops the stored token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
}

// payloadExpiry decodes the exp claim without verifying the signature.
// The client has no secret; the server re-verifies on every request.
func payloadExpiry(tok string) int64 {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return 0
	}
	var claims token.Claims
	if err := token.DecodeSegment(parts[1], &claims); err != nil {
		return 0
	}
	exp, _ := claims.Expiry()
	return exp
}
