package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	authgate "github.com/salonstack/authgate"
)

// RefreshHeader carries a proactively reissued token back to the client.
// Clients replace their stored token whenever the header is present.
const RefreshHeader = "X-Auth-Token"

const (
	unauthorizedMessage = "Unauthorized: Missing or invalid authentication token"
	forbiddenMessage    = "Forbidden: Insufficient permissions"
	unavailableMessage  = "Internal Server Error: Authentication backend unavailable"
)

type principalContextKey struct{}

// PrincipalFromContext returns the authenticated principal injected by
// [RequireAuth] or [OptionalAuth]. The second return is false for
// anonymous requests.
func PrincipalFromContext(ctx context.Context) (*authgate.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*authgate.Principal)
	return p, ok
}

// RequireAuth returns middleware that rejects unauthenticated requests
// with a 401. Authenticated requests proceed with the principal in the
// request context and a session cookie set when the gate promoted the
// request into a new session.
func RequireAuth(gate *authgate.Gate) func(http.Handler) http.Handler {
	return guard(gate, true, nil)
}

// OptionalAuth authenticates when a credential is present but lets
// anonymous requests through. Handlers distinguish the two via
// [PrincipalFromContext].
func OptionalAuth(gate *authgate.Gate) func(http.Handler) http.Handler {
	return guard(gate, false, nil)
}

// RequireRole is [RequireAuth] plus a role check. Authenticated requests
// whose role is outside the allowed set get a 403, never a 401.
func RequireRole(gate *authgate.Gate, roles ...string) func(http.Handler) http.Handler {
	return guard(gate, true, roles)
}

func guard(gate *authgate.Gate, required bool, roles []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gate == nil {
				writeError(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}

			ctx := authgate.WithClientIP(r.Context(), remoteIP(r))

			creds := authgate.Credentials{Headers: r.Header}
			if c, err := r.Cookie(gate.SessionCookieName()); err == nil {
				creds.SessionID = c.Value
			}

			decision, err := gate.Authenticate(ctx, creds, required)
			if err != nil {
				// Backend failure is never downgraded to a 401.
				writeError(w, http.StatusInternalServerError, unavailableMessage)
				return
			}

			switch decision.Outcome {
			case authgate.OutcomeRejected:
				writeError(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			case authgate.OutcomeAnonymous:
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			p := decision.Principal
			if len(roles) > 0 {
				if err := gate.RequireRole(ctx, p, roles...); err != nil {
					writeError(w, http.StatusForbidden, forbiddenMessage)
					return
				}
			}

			if decision.SessionID != creds.SessionID {
				http.SetCookie(w, sessionCookie(gate, decision.SessionID))
			}
			if fresh, err := gate.RefreshIfNeeded(ctx, p); err == nil && fresh != "" {
				w.Header().Set(RefreshHeader, fresh)
			}

			ctx = context.WithValue(ctx, principalContextKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClearSessionCookie expires the gate's session cookie. Logout handlers
// call it after Gate.Logout.
func ClearSessionCookie(gate *authgate.Gate, w http.ResponseWriter) {
	c := sessionCookie(gate, "")
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func sessionCookie(gate *authgate.Gate, value string) *http.Cookie {
	return &http.Cookie{
		Name:     gate.SessionCookieName(),
		Value:    value,
		Path:     "/",
		MaxAge:   int(gate.SessionTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
