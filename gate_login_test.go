package authgate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/salonstack/authgate/password"
	"github.com/salonstack/authgate/session"
	"github.com/salonstack/authgate/token"
)

type staffDirectory map[string]UserRecord

func (d staffDirectory) FindByEmail(_ context.Context, email string) (UserRecord, error) {
	u, ok := d[email]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return u, nil
}

func loginTestParams() password.Params {
	return password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func newLoginGate(t *testing.T, throttle bool) (*Gate, *session.MemoryStore) {
	t.Helper()

	hasher, err := password.NewHasher(loginTestParams())
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	hash, err := hasher.Hash("salon-pass-1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := staffDirectory{
		"ana@salon.example": {ID: "u-1", Email: "ana@salon.example", Role: RoleAdmin, PasswordHash: hash},
	}

	cfg := testGateConfig()
	store := session.NewMemoryStore()
	b := New().
		WithConfig(cfg).
		WithSessionStore(store).
		WithUserProvider(users).
		WithPasswordParams(loginTestParams()).
		WithClock(func() time.Time { return time.Unix(gateNow, 0) })

	if throttle {
		mr, err := miniredis.Run()
		if err != nil {
			t.Fatalf("miniredis start: %v", err)
		}
		t.Cleanup(mr.Close)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })

		cfg.Security.EnableLoginThrottle = true
		cfg.Security.MaxLoginAttempts = 2
		cfg.Security.LoginCooldown = time.Minute
		b = b.WithConfig(cfg).
			WithSessionStore(store).
			WithUserProvider(users).
			WithPasswordParams(loginTestParams()).
			WithClock(func() time.Time { return time.Unix(gateNow, 0) }).
			WithRedis(rdb)
	}

	g, err := b.Build()
	if err != nil {
		t.Fatalf("build gate: %v", err)
	}
	t.Cleanup(g.Close)
	return g, store
}

func TestLoginSuccess(t *testing.T) {
	g, store := newLoginGate(t, false)
	ctx := context.Background()

	res, err := g.Login(ctx, "ana@salon.example", "salon-pass-1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Principal.UserID != "u-1" || res.Principal.Role != RoleAdmin {
		t.Fatalf("unexpected principal: %+v", res.Principal)
	}
	if res.ExpiresAt != gateNow+86400 {
		t.Fatalf("expected 24h token, got exp %d", res.ExpiresAt)
	}

	ver, err := token.NewVerifier(gateSecret, token.WithVerifierClock(func() time.Time { return time.Unix(gateNow, 0) }))
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	claims, err := ver.Verify(res.Token)
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "ana@salon.example" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	sess, err := store.Get(ctx, res.Principal.SessionID)
	if err != nil {
		t.Fatalf("login session missing: %v", err)
	}
	if sess.Token != res.Token {
		t.Fatal("session does not mirror the login token")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	g, _ := newLoginGate(t, false)
	ctx := context.Background()

	// Unknown account and wrong password must be indistinguishable.
	if _, err := g.Login(ctx, "nobody@salon.example", "whatever-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown account: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := g.Login(ctx, "ana@salon.example", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginRateLimited(t *testing.T) {
	g, _ := newLoginGate(t, true)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := g.Login(ctx, "ana@salon.example", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
	if _, err := g.Login(ctx, "ana@salon.example", "wrong-pass"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("expected ErrLoginRateLimited, got %v", err)
	}
	// Even the correct password is refused while the window lasts.
	if _, err := g.Login(ctx, "ana@salon.example", "salon-pass-1"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("expected cooldown to hold, got %v", err)
	}
}

func TestLoginThrottleResetsOnSuccess(t *testing.T) {
	g, _ := newLoginGate(t, true)
	ctx := context.Background()

	if _, err := g.Login(ctx, "ana@salon.example", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := g.Login(ctx, "ana@salon.example", "salon-pass-1"); err != nil {
		t.Fatalf("login within budget: %v", err)
	}
	// The failure counter is cleared, so the budget is fresh again.
	for i := 0; i < 2; i++ {
		if _, err := g.Login(ctx, "ana@salon.example", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("post-reset attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
}

func TestLogout(t *testing.T) {
	g, store := newLoginGate(t, false)
	ctx := context.Background()

	res, err := g.Login(ctx, "ana@salon.example", "salon-pass-1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := g.Logout(ctx, res.Principal.SessionID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := store.Get(ctx, res.Principal.SessionID); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected session gone, got %v", err)
	}

	// Idempotent.
	if err := g.Logout(ctx, res.Principal.SessionID); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if err := g.Logout(ctx, ""); err != nil {
		t.Fatalf("empty session logout: %v", err)
	}
}

func TestLogoutAll(t *testing.T) {
	g, store := newLoginGate(t, false)
	ctx := context.Background()

	first, err := g.Login(ctx, "ana@salon.example", "salon-pass-1")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := g.Login(ctx, "ana@salon.example", "salon-pass-1")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	if err := g.LogoutAll(ctx, "u-1"); err != nil {
		t.Fatalf("logout all: %v", err)
	}
	for _, sid := range []string{first.Principal.SessionID, second.Principal.SessionID} {
		if _, err := store.Get(ctx, sid); !errors.Is(err, session.ErrNotFound) {
			t.Fatalf("expected %s gone, got %v", sid, err)
		}
	}
}

func TestLoginWithoutProvider(t *testing.T) {
	g, _ := newTestGate(t)
	if _, err := g.Login(context.Background(), "a@b.c", "pass"); !errors.Is(err, ErrGateNotReady) {
		t.Fatalf("expected ErrGateNotReady, got %v", err)
	}
}
