package blacklist

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable wraps backend failures. It is distinct from token
// validity errors so callers can fail closed instead of treating "could not
// check revocation" as "not revoked".
var ErrStoreUnavailable = errors.New("blacklist store unavailable")

// Store is the revocation capability required by the engine. All methods are
// safe for concurrent use; atomicity is scoped to single keys, never a
// global lock across all tokens.
type Store interface {
	// Revoke records jti as revoked until expiresAt. Idempotent: revoking
	// an already-revoked jti is a no-op.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error

	// RevokeIfAbsent atomically records jti unless it is already present.
	// It returns true when this call created the entry. Rotation uses this
	// as its consume gate: exactly one concurrent caller observes true.
	RevokeIfAbsent(ctx context.Context, jti string, expiresAt time.Time) (bool, error)

	// IsRevoked reports whether jti has been revoked. It never returns a
	// false negative for a jti whose Revoke completed before this call.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeFamily marks an entire refresh-token family as dead until
	// expiresAt. Tokens carrying the family are rejected from then on.
	RevokeFamily(ctx context.Context, familyID string, expiresAt time.Time) error

	// IsFamilyRevoked reports whether familyID has been marked dead.
	IsFamilyRevoked(ctx context.Context, familyID string) (bool, error)

	// CollectExpired removes entries whose natural expiry has passed and
	// returns how many were removed. An entry is never removed before its
	// expiry. Backends with native TTL support may make this a no-op.
	CollectExpired(ctx context.Context, now time.Time) (int, error)
}
