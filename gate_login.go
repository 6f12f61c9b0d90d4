package authgate

import (
	"context"
	"errors"
	"fmt"

	"github.com/salonstack/authgate/internal/audit"
	"github.com/salonstack/authgate/internal/rate"
	"github.com/salonstack/authgate/session"
	"github.com/salonstack/authgate/token"
)

// LoginResult is returned by a successful [Gate.Login].
type LoginResult struct {
	Token     string
	ExpiresAt int64
	Principal Principal
}

// Login verifies the password for the account behind email, then issues a
// token and a session in one step. Unknown accounts and wrong passwords
// both return ErrInvalidCredentials so the response does not reveal which
// one it was.
//
// Requires a UserProvider; gates built without one return ErrGateNotReady.
func (g *Gate) Login(ctx context.Context, email, pass string) (*LoginResult, error) {
	if g == nil || g.users == nil {
		return nil, ErrGateNotReady
	}
	ip := clientIPFromContext(ctx)

	if g.limiter != nil {
		if err := g.limiter.Check(ctx, email, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				g.metrics.Inc(MetricLoginRateLimited)
				g.emit(ctx, audit.Event{Kind: audit.KindLoginFailed, IP: ip, Error: "rate limited"})
				return nil, ErrLoginRateLimited
			}
			return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
		}
	}

	user, err := g.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, g.failLogin(ctx, email, ip, "unknown account")
		}
		return nil, err
	}

	ok, err := g.hasher.Verify(pass, user.PasswordHash)
	if err != nil || !ok {
		return nil, g.failLogin(ctx, email, ip, "bad password")
	}

	if g.limiter != nil {
		// A throttle reset failure must not fail a correct login.
		_ = g.limiter.Reset(ctx, email, ip)
	}

	tok, err := g.issuer.Issue(token.Claims{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, err
	}

	now := g.now()
	sessionID := g.newSessionID()
	record := &session.Session{
		ID:        sessionID,
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Token:     tok,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(g.config.Session.TTL).Unix(),
	}
	if err := g.sessions.Save(ctx, record, g.config.Session.TTL); err != nil {
		g.metrics.Inc(MetricSessionUnavailable)
		return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}

	g.metrics.Inc(MetricLoginSuccess)
	g.metrics.Inc(MetricSessionCreated)
	g.emit(ctx, audit.Event{Kind: audit.KindLoginSuccess, UserID: user.ID, SessionID: sessionID, IP: ip, Success: true})

	exp := now.Add(g.issuer.TTL()).Unix()
	return &LoginResult{
		Token:     tok,
		ExpiresAt: exp,
		Principal: Principal{
			UserID:      user.ID,
			Email:       user.Email,
			Role:        user.Role,
			SessionID:   sessionID,
			Method:      MethodToken,
			TokenExpiry: exp,
		},
	}, nil
}

func (g *Gate) failLogin(ctx context.Context, email, ip, reason string) error {
	if g.limiter != nil {
		// The counter bump may itself report the limit; prefer the
		// rate-limited error so the caller backs off.
		if err := g.limiter.RecordFailure(ctx, email, ip); errors.Is(err, rate.ErrRateLimited) {
			g.metrics.Inc(MetricLoginRateLimited)
			g.emit(ctx, audit.Event{Kind: audit.KindLoginFailed, IP: ip, Error: "rate limited"})
			return ErrLoginRateLimited
		}
	}
	g.metrics.Inc(MetricLoginFailure)
	g.emit(ctx, audit.Event{Kind: audit.KindLoginFailed, IP: ip, Error: reason})
	return ErrInvalidCredentials
}

// Logout tears down the server-side session. Logging out an already-dead
// session is not an error.
func (g *Gate) Logout(ctx context.Context, sessionID string) error {
	if g == nil {
		return ErrGateNotReady
	}
	if sessionID == "" {
		return nil
	}
	if err := g.sessions.Delete(ctx, sessionID); err != nil {
		g.metrics.Inc(MetricSessionUnavailable)
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	g.metrics.Inc(MetricLogout)
	g.emit(ctx, audit.Event{Kind: audit.KindLogout, SessionID: sessionID, IP: clientIPFromContext(ctx), Success: true})
	return nil
}

// LogoutAll removes every session belonging to the user, ending all of
// their devices at once.
func (g *Gate) LogoutAll(ctx context.Context, userID string) error {
	if g == nil {
		return ErrGateNotReady
	}
	if err := g.sessions.DeleteAllForUser(ctx, userID); err != nil {
		g.metrics.Inc(MetricSessionUnavailable)
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	g.metrics.Inc(MetricLogout)
	g.emit(ctx, audit.Event{Kind: audit.KindLogout, UserID: userID, IP: clientIPFromContext(ctx), Success: true})
	return nil
}
