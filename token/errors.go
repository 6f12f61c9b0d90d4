package token

import "errors"

// Verification failures. Callers that map failures to transport responses
// treat all three identically; the distinction exists for logging, metrics,
// and tests.
var (
	// ErrMalformed covers structural failures: wrong segment count,
	// undecodable base64, or payload/header that is not valid JSON.
	ErrMalformed = errors.New("token is malformed")

	// ErrSignatureMismatch means the token parsed but the recomputed
	// HMAC does not match the signature segment.
	ErrSignatureMismatch = errors.New("token signature mismatch")

	// ErrExpired means the signature verified but the exp claim is in
	// the past.
	ErrExpired = errors.New("token has expired")
)
