package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// EncodeSegment JSON-serializes v and renders it as URL-safe base64 without
// padding. Inputs are always well-formed structs from this package, so the
// only failure path is a marshaling bug, which is surfaced rather than
// swallowed.
func EncodeSegment(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeSegment reverses EncodeSegment into out. Input without trailing
// padding is the canonical form; padded input is tolerated by stripping
// the padding before decoding. Undecodable base64 or JSON yields
// ErrMalformed.
func DecodeSegment(segment string, out any) error {
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
	if err != nil {
		return ErrMalformed
	}
	if err := json.Unmarshal(data, out); err != nil {
		return ErrMalformed
	}
	return nil
}

// Sign computes HMAC-SHA256 over the literal string headerSegment + "." +
// payloadSegment and renders the digest with the same unpadded URL-safe
// base64 as EncodeSegment.
func Sign(headerSegment, payloadSegment string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(headerSegment))
	mac.Write([]byte{'.'})
	mac.Write([]byte(payloadSegment))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
