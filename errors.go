package authgate

import "errors"

var (
	// ErrUnauthorized means no usable credential accompanied the request.
	// Malformed, forged, and expired tokens all surface as ErrUnauthorized
	// at the gate boundary so the wire response does not reveal which
	// check failed.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the principal authenticated but lacks the
	// required role. Never conflated with ErrUnauthorized.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials covers both unknown identifier and wrong
	// password during login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned by UserProvider implementations when no
	// account matches the identifier.
	ErrUserNotFound = errors.New("user not found")
	// ErrLoginRateLimited means the identifier or IP exhausted its login
	// attempt budget.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrSessionUnavailable wraps session backend failures. Transports
	// must map it to a 500, never to an anonymous request.
	ErrSessionUnavailable = errors.New("session backend unavailable")
	// ErrGateNotReady is returned when a Gate method is called on a nil
	// or unbuilt gate.
	ErrGateNotReady = errors.New("gate not initialized")
)
