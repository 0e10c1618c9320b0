// Package guard decides whether a navigation may proceed.
//
// [Guard.Check] waits for session initialization, resolves the target path
// against a route [Table] and returns one [Decision]: Allowed, RedirectLogin or
// RedirectHome. [Middleware] applies the same decisions to net/http requests for
// a server-rendered front.
//
// # Architecture boundaries
//
// The guard reads session state through [Session] and never mutates it. It
// reports non-allowed decisions through an optional Notify hook; the caller owns
// how a notice is shown.
//
// # What this package must NOT do
//
//   - Send backend requests other than through Session.Initialize.
//   - Interpret raw role data (roles.Set does that).
package guard
