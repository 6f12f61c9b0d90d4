// Package session provides server-side session persistence and the compact
// binary session encoding used on authentication hot paths.
//
// # Binary encoding
//
// Sessions are stored as a versioned binary blob. The encoder is
// append-only: new versions add fields but never reinterpret old ones, so
// records written by an older deployment decode cleanly during a rolling
// upgrade.
//
// # Architecture boundaries
//
// This package owns the [Store] capability and the [Session] model. It does
// NOT interpret tokens or enforce authentication policy; those belong to
// the gate in the root package. It must never import authgate or token.
package session
