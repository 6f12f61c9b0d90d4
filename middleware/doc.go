// Package middleware adapts [authgate.Gate] decisions to net/http.
//
// # Guards
//
//   - [RequireAuth] — 401 unless a session or verified token is present.
//   - [OptionalAuth] — authenticates when possible, passes anonymous
//     requests through.
//   - [RequireRole] — RequireAuth plus a role allowlist; misses get 403.
//
// Each guard reads the session cookie and the request headers, calls
// Gate.Authenticate, and injects the principal into the request context.
// When authentication promotes a token into a session the guard sets the
// session cookie, and when a token is close to expiry the reissued token
// rides back on the X-Auth-Token response header.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Gate calls. It does NOT
// implement authentication logic itself. Backend failures surface as 500;
// they are never downgraded to 401.
package middleware
