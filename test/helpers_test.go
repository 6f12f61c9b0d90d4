//go:build integration
// +build integration

package test

import (
	"context"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authgate "github.com/salonstack/authgate"
	"github.com/salonstack/authgate/password"
)

var integrationSecret = []byte("integration-test-secret")

type directory map[string]authgate.UserRecord

func (d directory) FindByEmail(_ context.Context, email string) (authgate.UserRecord, error) {
	u, ok := d[email]
	if !ok {
		return authgate.UserRecord{}, authgate.ErrUserNotFound
	}
	return u, nil
}

func fastParams() password.Params {
	return password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

// newIntegrationGate builds a full gate over miniredis with two seeded
// accounts, one admin and one regular user, both with password
// "correct-horse".
func newIntegrationGate(t *testing.T) *authgate.Gate {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	hasher, err := password.NewHasher(fastParams())
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	hash, err := hasher.Hash("correct-horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	users := directory{
		"admin@salon.example": {ID: "u-admin", Email: "admin@salon.example", Role: authgate.RoleAdmin, PasswordHash: hash},
		"staff@salon.example": {ID: "u-staff", Email: "staff@salon.example", Role: authgate.RoleUser, PasswordHash: hash},
	}

	g, err := authgate.New().
		WithSecret(integrationSecret).
		WithRedis(rdb).
		WithUserProvider(users).
		WithPasswordParams(fastParams()).
		Build()
	if err != nil {
		t.Fatalf("build gate: %v", err)
	}
	t.Cleanup(g.Close)
	return g
}

func bearer(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}
