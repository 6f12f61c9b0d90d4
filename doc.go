// Package authgate provides dual session+token authentication with
// HMAC-SHA256 bearer tokens, role-based authorization, and proactive token
// refresh.
//
// The package is designed for concurrent server workloads: Gate methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Gate], [Builder], [Config],
// and value types (Principal, Decision, MetricsSnapshot). Token encoding
// lives in the token subpackage, session persistence in session, the HTTP
// adapter in middleware, and the browser-side mirror in client. Rate
// limiting and audit dispatch live under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its
//     public API.
//   - Terminate the process or write HTTP responses: every outcome is a
//     typed [Decision] the transport adapter translates.
//   - Import any sub-package that re-imports authgate (no import cycles).
//
// # Performance contract
//
// Authenticate is the hot path. Session-backed requests cost one store
// round-trip; token-backed requests add one HMAC computation and one store
// write for session promotion.
package authgate
