// Package flows contains pure-function orchestrators for the Engine's
// token lifecycle operations.
//
// Each flow function (RunIssue, RunRefresh, RunRevoke) accepts a typed
// dependency struct and returns results without side-effects beyond those
// dependencies. This design enables exhaustive unit testing with mock
// dependencies and keeps the Engine type thin.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the claims codec, blacklist store,
// audit dispatcher, and metrics. They do NOT own any of these resources;
// ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import the root package (to avoid import cycles).
//   - Perform I/O directly. All I/O is mediated through dependency
//     functions.
package flows
