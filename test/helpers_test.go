//go:build integration
// +build integration

package test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fkilld/tokenguard"
	"github.com/fkilld/tokenguard/blacklist"
)

var integrationSecret = []byte("0123456789abcdef0123456789abcdef")

func newIntegrationStore(t *testing.T) (*blacklist.Redis, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := blacklist.NewRedis(rdb, "tgbl")

	return store, mr, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func newIntegrationEngine(t *testing.T) (*tokenguard.Engine, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	engine, err := tokenguard.New().
		WithConfig(tokenguard.Config{
			JWT: tokenguard.JWTConfig{
				AccessTTL:  time.Minute,
				RefreshTTL: time.Hour,
				PrivateKey: integrationSecret,
				Issuer:     "tokenguard-integration",
			},
			Rotation: tokenguard.RotationConfig{
				RotateOnRefresh:        true,
				BlacklistAfterRotation: true,
			},
			Metrics: tokenguard.MetricsConfig{Enabled: true},
		}).
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}

	return engine, mr, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}
