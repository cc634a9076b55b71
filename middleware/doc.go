// Package middleware exposes HTTP middleware for access-token enforcement
// built on top of tokenguard.Engine verification.
//
// # Guards
//
//   - [Guard] — extracts the access token per the engine's transport
//     config, verifies it, and injects the identity into the request
//     context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement verification logic itself; all decisions are delegated to
// Engine.VerifyAccess.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Touch the blacklist store (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from the Engine.
package middleware
