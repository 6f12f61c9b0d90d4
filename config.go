package authgate

import (
	"errors"
	"time"
)

// Config is the full gate configuration. Instances are cloned at Build and
// treated as immutable afterwards.
type Config struct {
	// Secret is the HMAC-SHA256 signing key shared by issuer and
	// verifier. There is no default and no fallback: an empty secret
	// fails Validate, because a guessable default would let anyone mint
	// valid tokens.
	Secret []byte

	Token    TokenConfig
	Session  SessionConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

type TokenConfig struct {
	// TTL is the lifetime of issued tokens.
	TTL time.Duration
	// RefreshThreshold is how close to expiry a token must be before
	// RefreshIfNeeded reissues it.
	RefreshThreshold time.Duration
}

type SessionConfig struct {
	RedisPrefix string
	TTL         time.Duration
	// CookieName is the session cookie the HTTP middleware reads and
	// sets.
	CookieName string
}

type SecurityConfig struct {
	EnableLoginThrottle bool
	EnableIPThrottle    bool
	MaxLoginAttempts    int
	LoginCooldown       time.Duration
}

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:              24 * time.Hour,
			RefreshThreshold: time.Hour,
		},
		Session: SessionConfig{
			RedisPrefix: "session",
			TTL:         24 * time.Hour,
			CookieName:  "salon_session",
		},
		Security: SecurityConfig{
			EnableLoginThrottle: true,
			EnableIPThrottle:    true,
			MaxLoginAttempts:    5,
			LoginCooldown:       15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for values the gate cannot operate
// with. It is called by Build; callers constructing a Config by hand
// should call it too.
func (c *Config) Validate() error {
	if len(c.Secret) == 0 {
		return errors.New("signing secret is required and must not be empty")
	}
	if c.Token.TTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	if c.Token.RefreshThreshold < 0 {
		return errors.New("token refresh threshold must not be negative")
	}
	if c.Token.RefreshThreshold >= c.Token.TTL {
		return errors.New("token refresh threshold must be shorter than token TTL")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	if c.Session.CookieName == "" {
		return errors.New("session cookie name must not be empty")
	}
	if c.Security.EnableLoginThrottle {
		if c.Security.MaxLoginAttempts < 1 {
			return errors.New("max login attempts must be >= 1 when login throttle is enabled")
		}
		if c.Security.LoginCooldown <= 0 {
			return errors.New("login cooldown must be positive when login throttle is enabled")
		}
	}
	return nil
}

func cloneConfig(c Config) Config {
	out := c
	out.Secret = append([]byte(nil), c.Secret...)
	return out
}
