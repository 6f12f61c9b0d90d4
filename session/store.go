package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no live session exists for the given ID.
var ErrNotFound = errors.New("session not found")

// ErrUnavailable is returned when the backing store cannot be reached.
// Callers must treat it as an infrastructure failure, never as "no session".
var ErrUnavailable = errors.New("session store unavailable")

// Store is the capability the authorization gate needs from a session
// backend. Implementations must distinguish ErrNotFound from
// ErrUnavailable; conflating the two would let a store outage downgrade
// authenticated requests to anonymous.
type Store interface {
	// Save persists the session under its ID for the given TTL,
	// overwriting any existing record.
	Save(ctx context.Context, sess *Session, ttl time.Duration) error

	// Get returns the live session for the ID, ErrNotFound if absent or
	// expired, or ErrUnavailable on backend failure.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Delete removes the session. Deleting an absent session is not an
	// error.
	Delete(ctx context.Context, sessionID string) error

	// DeleteAllForUser removes every session belonging to the user.
	DeleteAllForUser(ctx context.Context, userID string) error
}
