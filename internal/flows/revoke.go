package flows

import (
	"context"
	"time"

	"github.com/fkilld/tokenguard/jwt"
)

// RevokeFailureKind classifies logout failures for root-level mapping.
type RevokeFailureKind int

const (
	RevokeFailureNone RevokeFailureKind = iota
	RevokeFailureDecode
	RevokeFailureType
	RevokeFailureStore
)

// RevokeResult carries revocation metadata or failure classification.
type RevokeResult struct {
	Failure  RevokeFailureKind
	Err      error
	UserID   string
	JTI      string
	FamilyID string
}

// RevokeDeps captures logout flow dependencies.
type RevokeDeps struct {
	DecodeRefresh func(string) (*jwt.Claims, error)
	Revoke        func(ctx context.Context, jti string, expiresAt time.Time) error
}

// RunRevoke blacklists the presented refresh token's jti. Structure, type,
// and signature are checked; expiry is not. Revoking an already-expired or
// already-revoked token is an accepted no-op for idempotence.
func RunRevoke(ctx context.Context, refreshToken string, deps RevokeDeps) RevokeResult {
	claims, err := deps.DecodeRefresh(refreshToken)
	if err != nil {
		return RevokeResult{
			Failure: RevokeFailureDecode,
			Err:     err,
		}
	}
	if claims.TokenType != jwt.TypeRefresh {
		return RevokeResult{
			Failure: RevokeFailureType,
			Err:     jwt.ErrTypeMismatch,
			UserID:  claims.UserID,
			JTI:     claims.ID,
		}
	}

	var naturalExpiry time.Time
	if claims.ExpiresAt != nil {
		naturalExpiry = claims.ExpiresAt.Time
	}

	if err := deps.Revoke(ctx, claims.ID, naturalExpiry); err != nil {
		return RevokeResult{
			Failure:  RevokeFailureStore,
			Err:      err,
			UserID:   claims.UserID,
			JTI:      claims.ID,
			FamilyID: claims.FamilyID,
		}
	}

	return RevokeResult{
		Failure:  RevokeFailureNone,
		UserID:   claims.UserID,
		JTI:      claims.ID,
		FamilyID: claims.FamilyID,
	}
}
