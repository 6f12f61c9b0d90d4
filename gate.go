package authgate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/salonstack/authgate/internal/audit"
	"github.com/salonstack/authgate/internal/rate"
	"github.com/salonstack/authgate/password"
	"github.com/salonstack/authgate/session"
	"github.com/salonstack/authgate/token"
)

// Gate is the authorization core. It orchestrates credential extraction,
// token verification, and session promotion into a single authentication
// decision per request. Construct through [Builder.Build]; all methods are
// then safe for concurrent use.
type Gate struct {
	config   Config
	issuer   *token.Issuer
	verifier *token.Verifier
	sessions session.Store
	limiter  *rate.Limiter
	users    UserProvider
	hasher   *password.Hasher
	audit    *audit.Dispatcher
	metrics  *Metrics

	now          func() time.Time
	newSessionID func() string
}

// Credentials carries the per-request inputs to Authenticate. SessionID is
// empty when the request presented no session cookie.
type Credentials struct {
	Headers   http.Header
	SessionID string
}

// Authenticate produces the authentication decision for one request.
//
// An existing session with a principal wins over any token in the request
// headers. A stale session can therefore shadow a newer token until the
// session ends; this ordering is deliberate and load-bearing for clients
// that stop re-sending tokens once a session exists.
//
// Without a session principal, a token found by [ExtractToken] is verified
// and, on success, the principal is written into a session so subsequent
// requests authenticate without re-sending the token.
//
// The error return is reserved for infrastructure failures (session
// backend down); those must surface as a 500, never as an anonymous
// request. All credential failures are reported through the Decision.
func (g *Gate) Authenticate(ctx context.Context, creds Credentials, required bool) (Decision, error) {
	if g == nil {
		return Decision{}, ErrGateNotReady
	}
	start := g.now()
	defer func() { g.metrics.Observe(MetricAuthenticateLatency, g.now().Sub(start)) }()

	var sess *session.Session
	if creds.SessionID != "" {
		got, err := g.sessions.Get(ctx, creds.SessionID)
		switch {
		case err == nil:
			sess = got
		case errors.Is(err, session.ErrNotFound):
			// Cookie for a dead session; fall through to token auth.
		default:
			g.metrics.Inc(MetricSessionUnavailable)
			return Decision{}, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
		}
	}

	if sess != nil && sess.UserID != "" {
		p := &Principal{
			UserID:      sess.UserID,
			Email:       sess.Email,
			Role:        sess.Role,
			SessionID:   sess.ID,
			Method:      MethodSession,
			TokenExpiry: unverifiedExpiry(sess.Token),
		}
		g.metrics.Inc(MetricAuthSession)
		g.emit(ctx, audit.Event{Kind: audit.KindAuthSession, UserID: p.UserID, SessionID: p.SessionID, IP: clientIPFromContext(ctx), Success: true})
		return Decision{Outcome: OutcomeAuthenticated, Principal: p, SessionID: sess.ID}, nil
	}

	tok, found := ExtractToken(creds.Headers, sess)
	if !found {
		return g.noCredential(ctx, required)
	}

	claims, err := g.verifier.Verify(tok)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrMalformed):
			g.metrics.Inc(MetricTokenMalformed)
		case errors.Is(err, token.ErrSignatureMismatch):
			g.metrics.Inc(MetricTokenSignature)
		case errors.Is(err, token.ErrExpired):
			g.metrics.Inc(MetricTokenExpired)
		}
		return g.rejectCredential(ctx, required, err)
	}
	if claims.UserID == "" {
		// Verified but unusable: no principal identity.
		return g.rejectCredential(ctx, required, token.ErrMalformed)
	}

	sessionID := creds.SessionID
	created := false
	if sessionID == "" {
		sessionID = g.newSessionID()
		created = true
	}
	now := g.now()
	record := &session.Session{
		ID:        sessionID,
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		Token:     tok,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(g.config.Session.TTL).Unix(),
	}
	if err := g.sessions.Save(ctx, record, g.config.Session.TTL); err != nil {
		g.metrics.Inc(MetricSessionUnavailable)
		return Decision{}, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	if created {
		g.metrics.Inc(MetricSessionCreated)
	}

	exp, _ := claims.Expiry()
	p := &Principal{
		UserID:      claims.UserID,
		Email:       claims.Email,
		Role:        claims.Role,
		SessionID:   sessionID,
		Method:      MethodToken,
		TokenExpiry: exp,
	}
	g.metrics.Inc(MetricAuthToken)
	g.emit(ctx, audit.Event{Kind: audit.KindAuthToken, UserID: p.UserID, SessionID: sessionID, IP: clientIPFromContext(ctx), Success: true})
	return Decision{Outcome: OutcomeAuthenticated, Principal: p, SessionID: sessionID}, nil
}

func (g *Gate) noCredential(ctx context.Context, required bool) (Decision, error) {
	if !required {
		g.metrics.Inc(MetricAuthAnonymous)
		return Decision{Outcome: OutcomeAnonymous}, nil
	}
	g.metrics.Inc(MetricAuthRejected)
	g.emit(ctx, audit.Event{Kind: audit.KindAuthRejected, IP: clientIPFromContext(ctx), Error: "no credential"})
	return Decision{Outcome: OutcomeRejected, Reason: ErrUnauthorized}, nil
}

func (g *Gate) rejectCredential(ctx context.Context, required bool, cause error) (Decision, error) {
	g.emit(ctx, audit.Event{Kind: audit.KindAuthRejected, IP: clientIPFromContext(ctx), Error: cause.Error()})
	if !required {
		// Optional-auth endpoints see an invalid token as "no principal",
		// same as no token at all.
		g.metrics.Inc(MetricAuthAnonymous)
		return Decision{Outcome: OutcomeAnonymous}, nil
	}
	g.metrics.Inc(MetricAuthRejected)
	return Decision{Outcome: OutcomeRejected, Reason: ErrUnauthorized}, nil
}

// RequireRole checks that the principal's role is in the allowed set.
// Returns ErrForbidden on a role miss and ErrUnauthorized when no principal
// is present; the two are never conflated.
func (g *Gate) RequireRole(ctx context.Context, p *Principal, roles ...string) error {
	if g == nil {
		return ErrGateNotReady
	}
	if p == nil {
		return ErrUnauthorized
	}
	if roleIn(p.Role, roles) {
		return nil
	}
	g.metrics.Inc(MetricForbidden)
	g.emit(ctx, audit.Event{
		Kind:      audit.KindForbidden,
		UserID:    p.UserID,
		SessionID: p.SessionID,
		IP:        clientIPFromContext(ctx),
		Metadata:  map[string]string{"role": p.Role, "required": strings.Join(roles, ",")},
	})
	return ErrForbidden
}

// RefreshIfNeeded reissues the principal's token when it is within the
// configured threshold of expiry. The new token carries the same identity
// claims with iat reset to now and exp to now+TTL, and replaces the copy
// mirrored in the session. Returns "" when no refresh is due.
//
// Delivery is the caller's job: the gate never writes responses. The HTTP
// middleware sends the new token in the X-Auth-Token header.
func (g *Gate) RefreshIfNeeded(ctx context.Context, p *Principal) (string, error) {
	if g == nil {
		return "", ErrGateNotReady
	}
	if p == nil || p.TokenExpiry == 0 {
		return "", nil
	}
	now := g.now()
	if p.TokenExpiry-now.Unix() > int64(g.config.Token.RefreshThreshold/time.Second) {
		return "", nil
	}

	fresh, err := g.issuer.Issue(token.Claims{UserID: p.UserID, Email: p.Email, Role: p.Role})
	if err != nil {
		return "", err
	}

	if p.SessionID != "" {
		record := &session.Session{
			ID:        p.SessionID,
			UserID:    p.UserID,
			Email:     p.Email,
			Role:      p.Role,
			Token:     fresh,
			CreatedAt: now.Unix(),
			ExpiresAt: now.Add(g.config.Session.TTL).Unix(),
		}
		if err := g.sessions.Save(ctx, record, g.config.Session.TTL); err != nil {
			g.metrics.Inc(MetricSessionUnavailable)
			return "", fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
		}
	}

	g.metrics.Inc(MetricTokenRefreshed)
	g.emit(ctx, audit.Event{Kind: audit.KindTokenRefreshed, UserID: p.UserID, SessionID: p.SessionID, IP: clientIPFromContext(ctx), Success: true})
	return fresh, nil
}

// SessionCookieName returns the configured session cookie name. HTTP
// adapters use it so cookie handling stays consistent with the gate.
func (g *Gate) SessionCookieName() string {
	if g == nil {
		return ""
	}
	return g.config.Session.CookieName
}

// SessionTTL returns the configured session lifetime.
func (g *Gate) SessionTTL() time.Duration {
	if g == nil {
		return 0
	}
	return g.config.Session.TTL
}

// Metrics exposes the gate's counters for snapshots and exporters.
func (g *Gate) Metrics() *Metrics {
	if g == nil {
		return nil
	}
	return g.metrics
}

// MetricsSnapshot is the exporter-facing view of the gate's counters.
func (g *Gate) MetricsSnapshot() MetricsSnapshot {
	return g.Metrics().Snapshot()
}

// Close flushes and stops the audit dispatcher. The gate must not be used
// after Close.
func (g *Gate) Close() {
	if g == nil {
		return
	}
	g.audit.Close()
}

func (g *Gate) emit(ctx context.Context, event audit.Event) {
	if g.audit == nil {
		return
	}
	event.Timestamp = g.now()
	g.audit.Emit(ctx, event)
}

// unverifiedExpiry reads the exp claim of a token without verifying the
// signature. Only used to decide refresh timing for session-authenticated
// requests; authorization never relies on it.
func unverifiedExpiry(tok string) int64 {
	if tok == "" {
		return 0
	}
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return 0
	}
	var claims token.Claims
	if err := token.DecodeSegment(parts[1], &claims); err != nil {
		return 0
	}
	exp, _ := claims.Expiry()
	return exp
}
