package flows

import (
	"context"
	"time"

	"github.com/fkilld/tokenguard/jwt"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureParse
	RefreshFailureReplay
	RefreshFailureStore
	RefreshFailureIssueAccess
	RefreshFailureIssueRefresh
)

// RefreshResult carries either the issued token pair or failure metadata.
type RefreshResult struct {
	Failure      RefreshFailureKind
	Err          error
	UserID       string
	JTI          string
	FamilyID     string
	AccessToken  string
	RefreshToken string
	Rotated      bool

	// FamilyRevokeErr is set when replay was detected but the follow-up
	// family revocation failed. The replay outcome stands either way.
	FamilyRevokeErr error
}

// RefreshDeps captures rotation flow dependencies.
type RefreshDeps struct {
	ParseRefresh    func(string) (*jwt.Claims, error)
	IsFamilyRevoked func(ctx context.Context, familyID string) (bool, error)
	IsRevoked       func(ctx context.Context, jti string) (bool, error)
	ConsumeJTI      func(ctx context.Context, jti string, expiresAt time.Time) (bool, error)
	RevokeFamily    func(ctx context.Context, familyID string, expiresAt time.Time) error
	IssueAccess     func(userID string) (string, error)
	IssueRefresh    func(userID, familyID string) (string, error)

	RotateOnRefresh        bool
	BlacklistAfterRotation bool

	// RefreshTTL bounds how long a family revocation must hold. The newest
	// member of a family can live RefreshTTL past its own minting, which is
	// always at or after the replayed token's minting, so now+RefreshTTL
	// covers every outstanding member.
	RefreshTTL time.Duration
}

// RunRefresh executes refresh verification, rotation, and issuance without
// root package dependencies.
//
// The consume gate is a single conditional insert into the blacklist: of N
// concurrent calls on one token, exactly one creates the entry and proceeds.
// The rest observe it as present, which is indistinguishable from reuse of
// an already-rotated token and is treated as replay.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	claims, err := deps.ParseRefresh(refreshToken)
	if err != nil {
		return RefreshResult{
			Failure: RefreshFailureParse,
			Err:     err,
		}
	}

	naturalExpiry := claims.ExpiresAt.Time

	if claims.FamilyID != "" {
		dead, famErr := deps.IsFamilyRevoked(ctx, claims.FamilyID)
		if famErr != nil {
			return RefreshResult{
				Failure:  RefreshFailureStore,
				Err:      famErr,
				UserID:   claims.UserID,
				JTI:      claims.ID,
				FamilyID: claims.FamilyID,
			}
		}
		if dead {
			return RefreshResult{
				Failure:  RefreshFailureReplay,
				UserID:   claims.UserID,
				JTI:      claims.ID,
				FamilyID: claims.FamilyID,
			}
		}
	}

	if deps.RotateOnRefresh && deps.BlacklistAfterRotation {
		first, gateErr := deps.ConsumeJTI(ctx, claims.ID, naturalExpiry)
		if gateErr != nil {
			return RefreshResult{
				Failure:  RefreshFailureStore,
				Err:      gateErr,
				UserID:   claims.UserID,
				JTI:      claims.ID,
				FamilyID: claims.FamilyID,
			}
		}
		if !first {
			return RefreshResult{
				Failure:         RefreshFailureReplay,
				UserID:          claims.UserID,
				JTI:             claims.ID,
				FamilyID:        claims.FamilyID,
				FamilyRevokeErr: killFamily(ctx, claims, deps),
			}
		}
	} else {
		revoked, lookErr := deps.IsRevoked(ctx, claims.ID)
		if lookErr != nil {
			return RefreshResult{
				Failure:  RefreshFailureStore,
				Err:      lookErr,
				UserID:   claims.UserID,
				JTI:      claims.ID,
				FamilyID: claims.FamilyID,
			}
		}
		if revoked {
			return RefreshResult{
				Failure:         RefreshFailureReplay,
				UserID:          claims.UserID,
				JTI:             claims.ID,
				FamilyID:        claims.FamilyID,
				FamilyRevokeErr: killFamily(ctx, claims, deps),
			}
		}
	}

	access, err := deps.IssueAccess(claims.UserID)
	if err != nil {
		return RefreshResult{
			Failure:  RefreshFailureIssueAccess,
			Err:      err,
			UserID:   claims.UserID,
			JTI:      claims.ID,
			FamilyID: claims.FamilyID,
		}
	}

	newRefresh := refreshToken
	rotated := false
	if deps.RotateOnRefresh {
		newRefresh, err = deps.IssueRefresh(claims.UserID, claims.FamilyID)
		if err != nil {
			return RefreshResult{
				Failure:  RefreshFailureIssueRefresh,
				Err:      err,
				UserID:   claims.UserID,
				JTI:      claims.ID,
				FamilyID: claims.FamilyID,
			}
		}
		rotated = true
	}

	return RefreshResult{
		Failure:      RefreshFailureNone,
		UserID:       claims.UserID,
		JTI:          claims.ID,
		FamilyID:     claims.FamilyID,
		AccessToken:  access,
		RefreshToken: newRefresh,
		Rotated:      rotated,
	}
}

// killFamily revokes the whole lineage after replay. The entry must hold
// until now+RefreshTTL: members minted by later rotations expire after the
// replayed token does, so keying the horizon to the replayed token's expiry
// would let them come back to life once it passes. Best effort: the replay
// outcome stands regardless of the returned error.
func killFamily(ctx context.Context, claims *jwt.Claims, deps RefreshDeps) error {
	if claims.FamilyID == "" {
		return nil
	}
	horizon := time.Now().Add(deps.RefreshTTL)
	if deps.RefreshTTL <= 0 {
		horizon = claims.ExpiresAt.Time
	}
	return deps.RevokeFamily(ctx, claims.FamilyID, horizon)
}
