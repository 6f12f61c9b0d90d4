package authgate

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/salonstack/authgate/internal/audit"
	"github.com/salonstack/authgate/internal/rate"
	"github.com/salonstack/authgate/password"
	"github.com/salonstack/authgate/session"
	"github.com/salonstack/authgate/token"
)

// Builder assembles a [Gate]. A builder is single-use: Build returns an
// error on the second call.
type Builder struct {
	config Config
	redis  *redis.Client

	sessions     session.Store
	userProvider UserProvider
	auditSink    AuditSink
	hasherParams *password.Params
	now          func() time.Time

	built bool
}

// New returns a Builder preloaded with defaults. The signing secret has no
// default and must be supplied through WithSecret or WithConfig.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSecret sets the HMAC signing secret.
func (b *Builder) WithSecret(secret []byte) *Builder {
	b.config.Secret = append([]byte(nil), secret...)
	return b
}

// WithRedis supplies the Redis client backing sessions and login
// throttling.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithSessionStore overrides the session backend. Takes precedence over
// WithRedis for session storage; login throttling still requires Redis.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.sessions = store
	return b
}

// WithUserProvider wires the account lookup used by the login flow.
// Optional: gates serving only token/session authentication can omit it.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithAuditSink enables audit dispatch into the given sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithPasswordParams overrides the argon2id cost parameters for the login
// flow.
func (b *Builder) WithPasswordParams(p password.Params) *Builder {
	b.hasherParams = &p
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the Authenticate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock replaces the wall clock. Tests use this to pin token and
// session timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and assembles the Gate. The secret is
// fail-closed: a missing or empty secret is a build error, never a
// fallback default.
func (b *Builder) Build() (*Gate, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.sessions
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("redis client or session store required")
		}
		store = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix)
	}

	var limiter *rate.Limiter
	if cfg.Security.EnableLoginThrottle {
		if b.redis == nil {
			return nil, errors.New("login throttle requires redis client")
		}
		limiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle: cfg.Security.EnableIPThrottle,
			MaxAttempts:      cfg.Security.MaxLoginAttempts,
			Cooldown:         cfg.Security.LoginCooldown,
		})
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	issuer, err := token.NewIssuer(cfg.Secret, token.WithTTL(cfg.Token.TTL), token.WithIssuerClock(now))
	if err != nil {
		return nil, err
	}
	verifier, err := token.NewVerifier(cfg.Secret, token.WithVerifierClock(now))
	if err != nil {
		return nil, err
	}

	params := password.DefaultParams()
	if b.hasherParams != nil {
		params = *b.hasherParams
	}
	hasher, err := password.NewHasher(params)
	if err != nil {
		return nil, err
	}

	g := &Gate{
		config:   cfg,
		issuer:   issuer,
		verifier: verifier,
		sessions: store,
		limiter:  limiter,
		users:    b.userProvider,
		hasher:   hasher,
		metrics:  NewMetrics(cfg.Metrics),
		now:      now,
		newSessionID: func() string {
			return uuid.NewString()
		},
	}
	g.audit = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	b.built = true
	return g, nil
}
