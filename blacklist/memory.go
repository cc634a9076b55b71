package blacklist

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	revokedAt time.Time
	expiresAt time.Time
}

// Memory is a process-local [Store]. A background reaper removes entries
// past their natural expiry; lookups never observe a partially-removed
// entry because all access goes through one mutex per store.
type Memory struct {
	mu       sync.Mutex
	tokens   map[string]entry
	families map[string]entry

	done      chan struct{}
	closeOnce sync.Once
}

// NewMemory creates a [Memory] store. When reapInterval is positive a
// reaper goroutine collects expired entries on that schedule until [Memory.Close]
// is called; otherwise collection only happens through CollectExpired.
func NewMemory(reapInterval time.Duration) *Memory {
	m := &Memory{
		tokens:   make(map[string]entry),
		families: make(map[string]entry),
		done:     make(chan struct{}),
	}

	if reapInterval > 0 {
		go m.reap(reapInterval)
	}

	return m
}

func (m *Memory) reap(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = m.CollectExpired(context.Background(), time.Now())
		case <-m.done:
			return
		}
	}
}

// Close stops the reaper goroutine. Safe to call more than once.
func (m *Memory) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
}

// Revoke implements [Store].
func (m *Memory) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	_, err := m.revoke(jti, expiresAt)
	return err
}

// RevokeIfAbsent implements [Store]. The check and the insert happen under
// one lock acquisition, making it a linearizable conditional insert.
func (m *Memory) RevokeIfAbsent(_ context.Context, jti string, expiresAt time.Time) (bool, error) {
	return m.revoke(jti, expiresAt)
}

func (m *Memory) revoke(jti string, expiresAt time.Time) (bool, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.tokens[jti]; ok && existing.expiresAt.After(now) {
		return false, nil
	}
	m.tokens[jti] = entry{revokedAt: now, expiresAt: expiresAt}
	return true, nil
}

// IsRevoked implements [Store].
func (m *Memory) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.tokens[jti]
	return ok, nil
}

// RevokeFamily implements [Store].
func (m *Memory) RevokeFamily(_ context.Context, familyID string, expiresAt time.Time) error {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.families[familyID]; ok && existing.expiresAt.After(now) {
		return nil
	}
	m.families[familyID] = entry{revokedAt: now, expiresAt: expiresAt}
	return nil
}

// IsFamilyRevoked implements [Store].
func (m *Memory) IsFamilyRevoked(_ context.Context, familyID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.families[familyID]
	return ok, nil
}

// CollectExpired implements [Store]. Entries are removed only once their
// natural expiry has passed; a caller-supplied now earlier than the real
// clock simply collects nothing extra.
func (m *Memory) CollectExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for jti, e := range m.tokens {
		if !e.expiresAt.After(now) {
			delete(m.tokens, jti)
			removed++
		}
	}
	for familyID, e := range m.families {
		if !e.expiresAt.After(now) {
			delete(m.families, familyID)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of live entries. Intended for tests and admin
// introspection, not hot paths.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens) + len(m.families)
}
