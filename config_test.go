package authgate

import (
	"strings"
	"testing"
	"time"
)

func TestValidateRejectsMissingSecret(t *testing.T) {
	cfg := defaultConfig()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("empty secret must fail validation")
	}
	if !strings.Contains(err.Error(), "secret") {
		t.Fatalf("error should name the secret: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() Config {
		cfg := defaultConfig()
		cfg.Secret = []byte("s")
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero token ttl", func(c *Config) { c.Token.TTL = 0 }},
		{"negative refresh threshold", func(c *Config) { c.Token.RefreshThreshold = -time.Second }},
		{"threshold >= ttl", func(c *Config) { c.Token.RefreshThreshold = c.Token.TTL }},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }},
		{"empty cookie name", func(c *Config) { c.Session.CookieName = "" }},
		{"throttle without attempts", func(c *Config) { c.Security.MaxLoginAttempts = 0 }},
		{"throttle without cooldown", func(c *Config) { c.Security.LoginCooldown = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation failure")
			}
		})
	}

	cfg := base()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("base config must validate: %v", err)
	}
}

func TestBuildFailsClosedWithoutSecret(t *testing.T) {
	_, err := New().WithSessionStore(failingStore{}).Build()
	if err == nil {
		t.Fatal("build without a secret must fail, never fall back to a default")
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	b := New().WithConfig(testGateConfig()).WithSessionStore(failingStore{})
	if _, err := b.Build(); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("second build must fail")
	}
}

func TestCloneConfigCopiesSecret(t *testing.T) {
	cfg := testGateConfig()
	clone := cloneConfig(cfg)
	clone.Secret[0] ^= 0xFF
	if cfg.Secret[0] == clone.Secret[0] {
		t.Fatal("clone shares the secret slice")
	}
}

func TestBuildRequiresBackend(t *testing.T) {
	_, err := New().WithConfig(testGateConfig()).Build()
	if err == nil {
		t.Fatal("build without redis or a session store must fail")
	}
}
