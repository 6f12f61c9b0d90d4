// Package client implements the browser-side half of the token protocol
// for Go consumers: a concurrency-safe token store with expiry awareness
// and an http.Client wrapper that attaches the bearer token, adopts
// server-reissued tokens from X-Auth-Token response headers, and drops
// the token on a 401.
//
// The store reads expiry from the token payload without verifying the
// signature. That is safe because the client holds no secret and the
// server re-verifies every request; local expiry only saves a doomed
// round trip.
package client
