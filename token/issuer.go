package token

import (
	"errors"
	"strings"
	"time"
)

// DefaultTTL is the lifetime stamped on tokens whose claims carry no
// explicit exp.
const DefaultTTL = 24 * time.Hour

// Issuer mints signed tokens. It is a pure function of (claims, secret,
// clock): identical inputs produce identical tokens, which the interop and
// round-trip tests rely on. Safe for concurrent use.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer builds an Issuer for the given signing secret. An empty secret
// is rejected here rather than producing tokens anyone can forge.
func NewIssuer(secret []byte, opts ...IssuerOption) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: signing secret must not be empty")
	}
	iss := &Issuer{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(iss)
	}
	return iss, nil
}

// IssuerOption adjusts Issuer construction.
type IssuerOption func(*Issuer)

// WithTTL overrides the default token lifetime.
func WithTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithIssuerClock replaces the wall clock. Tests use this to pin iat/exp.
func WithIssuerClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// TTL reports the lifetime applied to claims without an explicit exp.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs claims into the three-segment wire form. When IssuedAt or
// ExpiresAt are nil they default to now and now+TTL respectively; explicit
// values pass through untouched, so callers can mint pre-expired tokens in
// tests or honor an upstream expiry.
func (i *Issuer) Issue(claims Claims) (string, error) {
	now := i.now().Unix()
	if claims.IssuedAt == nil {
		claims.IssuedAt = &now
	}
	if claims.ExpiresAt == nil {
		exp := now + int64(i.ttl/time.Second)
		claims.ExpiresAt = &exp
	}

	headerSeg, err := EncodeSegment(Header{Type: headerType, Algorithm: headerAlgorithm})
	if err != nil {
		return "", err
	}
	payloadSeg, err := EncodeSegment(claims)
	if err != nil {
		return "", err
	}
	sig := Sign(headerSeg, payloadSeg, i.secret)

	var b strings.Builder
	b.Grow(len(headerSeg) + len(payloadSeg) + len(sig) + 2)
	b.WriteString(headerSeg)
	b.WriteByte('.')
	b.WriteString(payloadSeg)
	b.WriteByte('.')
	b.WriteString(sig)
	return b.String(), nil
}
