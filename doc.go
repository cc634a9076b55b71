// Package tokenguard is a JWT token lifecycle manager: it issues paired
// access/refresh tokens, verifies them, rotates refresh tokens on use, and
// revokes tokens to end sessions.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build]. Verification and issuance touch no mutable shared state
// except the blacklist store, whose contract scopes atomicity to single
// token identifiers. There is no global lock across tokens.
//
// # Architecture boundaries
//
// tokenguard is the public surface. It exposes [Engine], [Builder],
// [Config], and value types (Identity, TokenPair, MetricsSnapshot). Flow
// orchestration and audit dispatch live under internal/ and are never
// exported. The claims codec is the jwt subpackage; revocation backends are
// the blacklist subpackage.
//
// # What this package must NOT do
//
//   - Store or verify credentials. Password checking belongs to the caller
//     behind [CredentialValidator]; issuance takes an already-verified
//     identity.
//   - Persist anything other than revocation state.
//   - Retry a failed verification internally. Cryptographic and temporal
//     checks do not change outcome on retry.
package tokenguard
