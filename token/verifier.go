package token

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"
)

// Verifier checks tokens produced by Issuer (or any HS256 implementation
// using the same claim names). Safe for concurrent use.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier builds a Verifier for the given signing secret.
func NewVerifier(secret []byte, opts ...VerifierOption) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: signing secret must not be empty")
	}
	v := &Verifier{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// VerifierOption adjusts Verifier construction.
type VerifierOption func(*Verifier)

// WithVerifierClock replaces the wall clock. Tests use this to probe the
// expiry boundary exactly.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// Verify parses and validates a token, returning its claims on success.
//
// The checks run in a fixed order so each failure maps to exactly one
// sentinel: segment count and segment decoding report ErrMalformed, the
// constant-time signature comparison reports ErrSignatureMismatch, and the
// expiry check reports ErrExpired. A token whose exp equals the current
// second still passes; only exp strictly before now fails. A missing exp
// claim never expires.
func (v *Verifier) Verify(tok string) (Claims, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return Claims{}, ErrMalformed
	}

	var hdr Header
	if err := DecodeSegment(parts[0], &hdr); err != nil {
		return Claims{}, ErrMalformed
	}
	var claims Claims
	if err := DecodeSegment(parts[1], &claims); err != nil {
		return Claims{}, ErrMalformed
	}

	want := Sign(parts[0], parts[1], v.secret)
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(want)) != 1 {
		return Claims{}, ErrSignatureMismatch
	}

	if exp, ok := claims.Expiry(); ok && exp < v.now().Unix() {
		return Claims{}, ErrExpired
	}
	return claims, nil
}
