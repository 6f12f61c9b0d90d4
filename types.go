package authgate

import "context"

// AuthMethod records which credential path authenticated a request.
type AuthMethod uint8

const (
	// MethodSession means the principal came from an existing server-side
	// session.
	MethodSession AuthMethod = iota + 1
	// MethodToken means the principal came from a verified bearer token.
	MethodToken
)

func (m AuthMethod) String() string {
	switch m {
	case MethodSession:
		return "session"
	case MethodToken:
		return "token"
	default:
		return "none"
	}
}

// Principal is the authenticated identity attached to a request. It is
// constructed fresh on every Authenticate call and never persisted beyond
// the session record that mirrors it.
type Principal struct {
	UserID    string
	Email     string
	Role      string
	SessionID string
	Method    AuthMethod

	// TokenExpiry is the exp claim of the token that authenticated the
	// request, in seconds since epoch. Zero when the token carried no exp
	// or the principal came from a session without a mirrored token.
	TokenExpiry int64
}

// Outcome is the terminal state of an authentication decision.
type Outcome uint8

const (
	// OutcomeAnonymous means no credential was presented and none was
	// required. Callers use it for optional-auth endpoints.
	OutcomeAnonymous Outcome = iota
	// OutcomeAuthenticated means a principal was established.
	OutcomeAuthenticated
	// OutcomeRejected means authentication was required and failed.
	OutcomeRejected
)

// Decision is the typed result of [Gate.Authenticate]. The transport
// adapter translates it to a response; the gate itself never writes one.
type Decision struct {
	Outcome   Outcome
	Principal *Principal

	// SessionID is the session backing this request. It differs from the
	// request's incoming session ID when token authentication promoted
	// the principal into a fresh session; the adapter then (re)sets the
	// cookie.
	SessionID string

	// Reason carries the rejection cause for OutcomeRejected. It is one
	// of the package sentinels, suitable for logging and metrics but not
	// for the wire.
	Reason error
}

// UserRecord is the account record returned by [UserProvider].
type UserRecord struct {
	ID           string
	Email        string
	Role         string
	PasswordHash string
}

// UserProvider is the interface callers implement to integrate the gate's
// login flow with their user database. Implementations return
// [ErrUserNotFound] when no account matches; any other error is treated as
// a backend failure.
type UserProvider interface {
	FindByEmail(ctx context.Context, email string) (UserRecord, error)
}
