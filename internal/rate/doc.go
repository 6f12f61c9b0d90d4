// Package rate provides Redis-backed fixed-window counters used to throttle
// login attempts.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - al:  — login per-identifier
//   - ali: — login per-IP
//
// # What this package must NOT do
//
//   - Decide login policy (the gate owns that).
//   - Be imported outside the authgate module.
package rate
