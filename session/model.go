package session

// Session is the server-side record behind a session cookie. It mirrors the
// identity claims of the token that created it, plus the token itself so the
// credential extractor can fall back to it when a request carries no
// Authorization header.
type Session struct {
	ID     string
	UserID string
	Email  string
	Role   string

	// Token is the most recent bearer token issued to this session. It is
	// replaced in place when the gate refreshes a near-expiry token.
	Token string

	CreatedAt int64
	ExpiresAt int64
}
