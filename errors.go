package tokenguard

import (
	"errors"

	"github.com/fkilld/tokenguard/blacklist"
	"github.com/fkilld/tokenguard/jwt"
)

// Token validity errors are aliased from the jwt subpackage so that callers
// can match with errors.Is against either surface.
var (
	// ErrTokenMalformed indicates the token is structurally invalid.
	ErrTokenMalformed = jwt.ErrMalformed
	// ErrSignatureInvalid indicates the signature does not verify.
	ErrSignatureInvalid = jwt.ErrSignatureInvalid
	// ErrTokenExpired indicates the expiry (plus leeway) has passed.
	ErrTokenExpired = jwt.ErrExpired
	// ErrTokenNotYetValid indicates the validity window has not started.
	ErrTokenNotYetValid = jwt.ErrNotYetValid
	// ErrClaimMismatch indicates issuer or audience expectations failed.
	ErrClaimMismatch = jwt.ErrClaimMismatch
	// ErrTokenTypeMismatch indicates an access token was presented where a
	// refresh token was expected, or vice versa.
	ErrTokenTypeMismatch = jwt.ErrTypeMismatch

	// ErrStoreUnavailable indicates the blacklist backend failed. It is
	// distinct from validity errors; verification fails closed on it.
	ErrStoreUnavailable = blacklist.ErrStoreUnavailable
)

var (
	// ErrTokenRevoked is returned when a presented token's jti is on the
	// blacklist.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrReplayDetected is returned when an already-rotated refresh token
	// is presented again. The whole token family is revoked as a side
	// effect before the error is returned.
	ErrReplayDetected = errors.New("refresh token replay detected")
	// ErrInvalidCredentials is returned by Login when the injected
	// CredentialValidator rejects the credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEngineNotReady is returned when an Engine method is called on a
	// nil or incompletely-built engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
