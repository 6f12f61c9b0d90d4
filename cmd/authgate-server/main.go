// Command authgate-server runs a standalone authentication service in
// front of a Redis instance: login, logout, token verification, and a
// Prometheus metrics page, with accounts loaded from the config file.
//
// Usage:
//
//	authgate-server --config authgate.yaml
//
// The signing secret is taken from the AUTHGATE_SECRET environment
// variable, falling back to the config file. A missing secret is a
// startup error; the server never falls back to a default key.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	authgate "github.com/salonstack/authgate"
	"github.com/salonstack/authgate/metrics/export/prometheus"
	"github.com/salonstack/authgate/middleware"
)

type fileConfig struct {
	Listen string `yaml:"listen"`
	Secret string `yaml:"secret"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Token struct {
		TTL              time.Duration `yaml:"ttl"`
		RefreshThreshold time.Duration `yaml:"refresh_threshold"`
	} `yaml:"token"`

	Session struct {
		CookieName string        `yaml:"cookie_name"`
		TTL        time.Duration `yaml:"ttl"`
	} `yaml:"session"`

	Users []struct {
		ID           string `yaml:"id"`
		Email        string `yaml:"email"`
		Role         string `yaml:"role"`
		PasswordHash string `yaml:"password_hash"`
	} `yaml:"users"`
}

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "authgate-server",
		Short:         "Standalone authentication service backed by Redis",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", "authgate.yaml", "path to the YAML config file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	secret := os.Getenv("AUTHGATE_SECRET")
	if secret == "" {
		secret = cfg.Secret
	}
	if secret == "" {
		return errors.New("no signing secret: set AUTHGATE_SECRET or the secret config key")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
	}

	gateCfg, err := gateConfig(cfg, secret)
	if err != nil {
		return err
	}
	gate, err := authgate.New().
		WithConfig(gateCfg).
		WithRedis(rdb).
		WithUserProvider(staticUsers(cfg)).
		Build()
	if err != nil {
		return fmt.Errorf("build gate: %w", err)
	}
	defer gate.Close()

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router(gate, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Listen), zap.String("redis", cfg.Redis.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func loadConfig(path string) (*fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &fileConfig{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	return cfg, nil
}

func gateConfig(cfg *fileConfig, secret string) (authgate.Config, error) {
	out := authgate.Config{Secret: []byte(secret)}
	out.Token.TTL = cfg.Token.TTL
	if out.Token.TTL == 0 {
		out.Token.TTL = 24 * time.Hour
	}
	out.Token.RefreshThreshold = cfg.Token.RefreshThreshold
	if out.Token.RefreshThreshold == 0 {
		out.Token.RefreshThreshold = time.Hour
	}
	out.Session.RedisPrefix = "session"
	out.Session.TTL = cfg.Session.TTL
	if out.Session.TTL == 0 {
		out.Session.TTL = 24 * time.Hour
	}
	out.Session.CookieName = cfg.Session.CookieName
	if out.Session.CookieName == "" {
		out.Session.CookieName = "salon_session"
	}
	out.Security.EnableLoginThrottle = true
	out.Security.EnableIPThrottle = true
	out.Security.MaxLoginAttempts = 5
	out.Security.LoginCooldown = 15 * time.Minute
	out.Metrics.Enabled = true
	out.Metrics.EnableLatencyHistograms = true
	return out, out.Validate()
}

// staticUsers serves the accounts listed in the config file. Larger
// deployments implement authgate.UserProvider over their own database
// and run the gate as a library instead.
func staticUsers(cfg *fileConfig) authgate.UserProvider {
	users := make(map[string]authgate.UserRecord, len(cfg.Users))
	for _, u := range cfg.Users {
		users[u.Email] = authgate.UserRecord{
			ID: u.ID, Email: u.Email, Role: u.Role, PasswordHash: u.PasswordHash,
		}
	}
	return configUsers(users)
}

type configUsers map[string]authgate.UserRecord

func (c configUsers) FindByEmail(_ context.Context, email string) (authgate.UserRecord, error) {
	u, ok := c[email]
	if !ok {
		return authgate.UserRecord{}, authgate.ErrUserNotFound
	}
	return u, nil
}

func router(gate *authgate.Gate, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Post("/login", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		ctx := authgate.WithClientIP(req.Context(), req.RemoteAddr)
		res, err := gate.Login(ctx, body.Email, body.Password)
		switch {
		case err == nil:
		case errors.Is(err, authgate.ErrLoginRateLimited):
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many attempts, try again later"})
			return
		case errors.Is(err, authgate.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
			return
		default:
			logger.Error("login", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     gate.SessionCookieName(),
			Value:    res.Principal.SessionID,
			Path:     "/",
			HttpOnly: true,
			MaxAge:   int(gate.SessionTTL().Seconds()),
		})
		writeJSON(w, http.StatusOK, map[string]any{
			"token":      res.Token,
			"expires_at": res.ExpiresAt,
			"role":       res.Principal.Role,
		})
	})

	r.Post("/logout", func(w http.ResponseWriter, req *http.Request) {
		if c, err := req.Cookie(gate.SessionCookieName()); err == nil {
			if err := gate.Logout(req.Context(), c.Value); err != nil {
				logger.Warn("logout", zap.Error(err))
			}
		}
		middleware.ClearSessionCookie(gate, w)
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
	})

	r.Get("/metrics", prometheus.NewPrometheusExporter(gate).Handler().ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(gate))
		r.Get("/whoami", func(w http.ResponseWriter, req *http.Request) {
			p, _ := middleware.PrincipalFromContext(req.Context())
			writeJSON(w, http.StatusOK, map[string]any{
				"user_id": p.UserID,
				"email":   p.Email,
				"role":    p.Role,
				"method":  p.Method.String(),
			})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
