// Package blacklist tracks revoked token identifiers until their natural
// expiry. It is the only shared mutable state in the token lifecycle engine.
//
// The [Store] contract requires per-key atomicity: RevokeIfAbsent is the
// mutual-exclusion gate that makes refresh rotation race-free, so a backend
// must implement it as a single conditional insert, never as a read followed
// by a write. Two backends ship with the package: [Memory] for process-local
// deployments and [Redis] for multi-instance ones.
package blacklist
