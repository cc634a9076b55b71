//go:build integration
// +build integration

package test

import (
	"context"
	"testing"
	"time"
)

func TestStoreConsistencyRevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _, cleanup := newIntegrationStore(t)
	defer cleanup()

	expiry := time.Now().Add(time.Hour)
	if err := store.Revoke(ctx, "jti-idem", expiry); err != nil {
		t.Fatalf("first Revoke failed: %v", err)
	}
	if err := store.Revoke(ctx, "jti-idem", expiry); err != nil {
		t.Fatalf("second Revoke failed: %v", err)
	}

	revoked, err := store.IsRevoked(ctx, "jti-idem")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if !revoked {
		t.Fatal("expected jti to stay revoked")
	}
}

func TestStoreConsistencyEntriesExpireNaturally(t *testing.T) {
	ctx := context.Background()
	store, mr, cleanup := newIntegrationStore(t)
	defer cleanup()

	if err := store.Revoke(ctx, "jti-ttl", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if err := store.RevokeFamily(ctx, "fam-ttl", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("RevokeFamily failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	revoked, err := store.IsRevoked(ctx, "jti-ttl")
	if err != nil {
		t.Fatalf("IsRevoked failed: %v", err)
	}
	if revoked {
		t.Fatal("entry must expire with its token")
	}

	dead, err := store.IsFamilyRevoked(ctx, "fam-ttl")
	if err != nil {
		t.Fatalf("IsFamilyRevoked failed: %v", err)
	}
	if dead {
		t.Fatal("family entry must expire with its horizon")
	}
}

func TestStoreConsistencyGateSingleWinner(t *testing.T) {
	ctx := context.Background()
	store, _, cleanup := newIntegrationStore(t)
	defer cleanup()

	expiry := time.Now().Add(time.Hour)
	winners := 0
	for i := 0; i < 8; i++ {
		first, err := store.RevokeIfAbsent(ctx, "jti-gate", expiry)
		if err != nil {
			t.Fatalf("RevokeIfAbsent failed: %v", err)
		}
		if first {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}
