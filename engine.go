package tokenguard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fkilld/tokenguard/blacklist"
	"github.com/fkilld/tokenguard/internal/flows"
	"github.com/fkilld/tokenguard/jwt"
)

// Engine is the token lifecycle manager. Construct it through
// [Builder.Build]; all methods are then safe for concurrent use.
type Engine struct {
	config      Config
	jwtManager  *jwt.Manager
	store       blacklist.Store
	credentials CredentialValidator
	audit       *auditDispatcher
	metrics     *Metrics

	// ownedStore is set when Build created the in-memory store itself, so
	// Close can stop its reaper.
	ownedStore *blacklist.Memory
}

// Issue mints an access/refresh token pair for an already-verified
// identity. Each call starts a new refresh-token family; no prior token is
// read or revoked.
func (e *Engine) Issue(ctx context.Context, identity Identity) (TokenPair, error) {
	if e == nil || e.jwtManager == nil {
		return TokenPair{}, ErrEngineNotReady
	}
	if identity.UserID == "" {
		return TokenPair{}, errors.New("identity user id required")
	}

	res := flows.RunIssue(identity.UserID, flows.IssueDeps{
		NewFamilyID:  uuid.NewString,
		IssueAccess:  e.issueAccess,
		IssueRefresh: e.issueRefresh,
	})
	if res.Failure != flows.IssueFailureNone {
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, AuditEvent{
			Timestamp: time.Now(),
			EventType: AuditEventIssue,
			UserID:    identity.UserID,
			Success:   false,
			Error:     res.Err.Error(),
		})
		return TokenPair{}, res.Err
	}

	e.metricInc(MetricIssueSuccess)
	e.emitAudit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditEventIssue,
		UserID:    identity.UserID,
		FamilyID:  res.FamilyID,
		Success:   true,
	})
	return TokenPair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}, nil
}

// Login validates credentials through the injected [CredentialValidator]
// and issues a pair for the resulting identity.
func (e *Engine) Login(ctx context.Context, username, password string) (TokenPair, error) {
	if e == nil || e.jwtManager == nil {
		return TokenPair{}, ErrEngineNotReady
	}
	if e.credentials == nil {
		return TokenPair{}, fmt.Errorf("%w: no credential validator configured", ErrEngineNotReady)
	}

	identity, err := e.credentials.ValidateCredentials(ctx, username, password)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return e.Issue(ctx, identity)
}

// Verify checks a token end to end: structure, signature, temporal bounds
// with leeway, issuer/audience expectations, token type, and revocation.
// It mutates no shared state; the blacklist is only read.
func (e *Engine) Verify(ctx context.Context, token string, expected jwt.TokenType) (*Identity, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.jwtManager.Parse(token, expected)
	if err != nil {
		e.metricInc(MetricVerifyFailure)
		return nil, err
	}

	if expected == jwt.TypeRefresh && claims.FamilyID != "" {
		dead, famErr := e.store.IsFamilyRevoked(ctx, claims.FamilyID)
		if famErr != nil {
			e.metricInc(MetricStoreUnavailable)
			return nil, famErr
		}
		if dead {
			return nil, e.denyRevoked(ctx, claims)
		}
	}

	revoked, err := e.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		e.metricInc(MetricStoreUnavailable)
		return nil, err
	}
	if revoked {
		return nil, e.denyRevoked(ctx, claims)
	}

	e.metricInc(MetricVerifySuccess)
	return identityFromClaims(claims), nil
}

// VerifyAccess is shorthand for Verify with the access token type. It is
// the hot path behind [middleware.Guard].
func (e *Engine) VerifyAccess(ctx context.Context, token string) (*Identity, error) {
	return e.Verify(ctx, token, jwt.TypeAccess)
}

// Refresh rotates a refresh token: the presented token is verified,
// atomically consumed, and replaced by a new pair carrying the same family.
// Presenting an already-consumed token fails with [ErrReplayDetected] and
// kills the whole family. Of N concurrent calls on one token exactly one
// succeeds.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if e == nil || e.jwtManager == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	res := flows.RunRefresh(ctx, refreshToken, flows.RefreshDeps{
		ParseRefresh: func(token string) (*jwt.Claims, error) {
			return e.jwtManager.Parse(token, jwt.TypeRefresh)
		},
		IsFamilyRevoked:        e.store.IsFamilyRevoked,
		IsRevoked:              e.store.IsRevoked,
		ConsumeJTI:             e.store.RevokeIfAbsent,
		RevokeFamily:           e.store.RevokeFamily,
		IssueAccess:            e.issueAccess,
		IssueRefresh:           e.issueRefresh,
		RotateOnRefresh:        e.config.Rotation.RotateOnRefresh,
		BlacklistAfterRotation: e.config.Rotation.BlacklistAfterRotation,
		RefreshTTL:             e.config.JWT.RefreshTTL,
	})

	switch res.Failure {
	case flows.RefreshFailureNone:
		e.metricInc(MetricRefreshSuccess)
		e.emitAudit(ctx, AuditEvent{
			Timestamp: time.Now(),
			EventType: AuditEventRefresh,
			UserID:    res.UserID,
			JTI:       res.JTI,
			FamilyID:  res.FamilyID,
			Success:   true,
		})
		return TokenPair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}, nil

	case flows.RefreshFailureReplay:
		e.metricInc(MetricReplayDetected)
		e.emitAudit(ctx, AuditEvent{
			Timestamp: time.Now(),
			EventType: AuditEventReplay,
			UserID:    res.UserID,
			JTI:       res.JTI,
			FamilyID:  res.FamilyID,
			Success:   false,
			Error:     ErrReplayDetected.Error(),
		})
		if res.FamilyID != "" {
			famEvent := AuditEvent{
				Timestamp: time.Now(),
				EventType: AuditEventFamilyRevoked,
				UserID:    res.UserID,
				FamilyID:  res.FamilyID,
				Success:   true,
			}
			if res.FamilyRevokeErr != nil {
				e.metricInc(MetricStoreUnavailable)
				famEvent.Success = false
				famEvent.Error = res.FamilyRevokeErr.Error()
			} else {
				e.metricInc(MetricFamilyRevoked)
			}
			e.emitAudit(ctx, famEvent)
		}
		return TokenPair{}, ErrReplayDetected

	case flows.RefreshFailureStore:
		e.metricInc(MetricStoreUnavailable)
		e.metricInc(MetricRefreshFailure)
		return TokenPair{}, res.Err

	default:
		e.metricInc(MetricRefreshFailure)
		return TokenPair{}, res.Err
	}
}

// Revoke ends a session by blacklisting the presented refresh token's jti.
// Structure, signature, and type are checked; expiry is not, and revoking
// an already-revoked token is a no-op.
func (e *Engine) Revoke(ctx context.Context, refreshToken string) error {
	if e == nil || e.jwtManager == nil {
		return ErrEngineNotReady
	}

	res := flows.RunRevoke(ctx, refreshToken, flows.RevokeDeps{
		DecodeRefresh: e.jwtManager.Decode,
		Revoke:        e.store.Revoke,
	})

	switch res.Failure {
	case flows.RevokeFailureNone:
		e.metricInc(MetricRevokeSuccess)
		e.emitAudit(ctx, AuditEvent{
			Timestamp: time.Now(),
			EventType: AuditEventRevoke,
			UserID:    res.UserID,
			JTI:       res.JTI,
			FamilyID:  res.FamilyID,
			Success:   true,
		})
		return nil
	case flows.RevokeFailureStore:
		e.metricInc(MetricStoreUnavailable)
		e.metricInc(MetricRevokeFailure)
		return res.Err
	default:
		e.metricInc(MetricRevokeFailure)
		return res.Err
	}
}

// RevokeFamily marks an entire refresh-token lineage dead. Outstanding
// refresh tokens in the family are rejected from then on; access tokens
// keep expiring on their own.
func (e *Engine) RevokeFamily(ctx context.Context, familyID string) error {
	if e == nil || e.jwtManager == nil {
		return ErrEngineNotReady
	}
	if familyID == "" {
		return errors.New("family id required")
	}

	// The family entry outlives the longest-lived member.
	horizon := time.Now().Add(e.config.JWT.RefreshTTL)
	if err := e.store.RevokeFamily(ctx, familyID, horizon); err != nil {
		e.metricInc(MetricStoreUnavailable)
		return err
	}

	e.metricInc(MetricFamilyRevoked)
	e.emitAudit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditEventFamilyRevoked,
		FamilyID:  familyID,
		Success:   true,
	})
	return nil
}

// CollectExpired removes blacklist entries past their natural expiry and
// returns the number removed. The in-memory store also runs this on its own
// reaper schedule; backends with native TTLs report zero.
func (e *Engine) CollectExpired(ctx context.Context) (int, error) {
	if e == nil || e.store == nil {
		return 0, ErrEngineNotReady
	}
	removed, err := e.store.CollectExpired(ctx, time.Now())
	if err != nil {
		e.metricInc(MetricStoreUnavailable)
		return 0, err
	}
	e.metrics.Add(MetricBlacklistCollected, uint64(removed))
	return removed, nil
}

// Transport returns the configured token extraction options for the HTTP
// middleware.
func (e *Engine) Transport() TransportConfig {
	if e == nil {
		return TransportConfig{}
	}
	return e.config.Transport
}

// MetricsSnapshot copies the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were dropped by a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// Close releases engine-owned resources: the audit dispatcher is drained
// and, when Build created the in-memory blacklist, its reaper is stopped.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
	if e.ownedStore != nil {
		e.ownedStore.Close()
	}
}

func (e *Engine) issueAccess(userID string) (string, error) {
	token, _, err := e.jwtManager.CreateAccess(userID)
	return token, err
}

func (e *Engine) issueRefresh(userID, familyID string) (string, error) {
	token, _, err := e.jwtManager.CreateRefresh(userID, familyID)
	return token, err
}

func (e *Engine) denyRevoked(ctx context.Context, claims *jwt.Claims) error {
	e.metricInc(MetricVerifyRevoked)
	e.emitAudit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditEventVerifyDenied,
		UserID:    claims.UserID,
		JTI:       claims.ID,
		FamilyID:  claims.FamilyID,
		Success:   false,
		Error:     ErrTokenRevoked.Error(),
	})
	return ErrTokenRevoked
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	e.audit.Emit(ctx, event)
}

func identityFromClaims(claims *jwt.Claims) *Identity {
	id := &Identity{
		UserID:   claims.UserID,
		TokenID:  claims.ID,
		FamilyID: claims.FamilyID,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id
}
