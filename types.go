package tokenguard

import (
	"context"
	"time"
)

// Identity names an authenticated principal. As input to [Engine.Issue]
// only UserID is consulted; [Engine.Verify] returns an Identity with the
// token-derived fields populated.
type Identity struct {
	UserID string

	// Populated by Verify.
	TokenID   string
	FamilyID  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is an access token and its companion refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// CredentialValidator is the external collaborator that checks credentials
// before issuance. tokenguard never stores or hashes passwords; callers
// implement this against their user database and return the verified
// identity, or an error treated as a credential rejection.
type CredentialValidator interface {
	ValidateCredentials(ctx context.Context, username, password string) (Identity, error)
}
