// Package token implements the signed-token wire format used by authgate:
// three URL-safe base64 segments (header, payload, signature) joined by
// dots, signed with HMAC-SHA256. The format is interoperable with standard
// HS256 JWTs; the codec is kept in-tree because the verifier's boundary
// semantics (expiry comparison, padding tolerance, uniform failure
// taxonomy) are part of the wire contract.
package token
