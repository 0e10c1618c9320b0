// Package security derives a posture report from client settings: whether the
// bearer token travels encrypted, where the credential is persisted and who
// can read it.
//
// # What this package must NOT do
//
//   - Perform I/O or open connections.
//   - Import the root package.
package security
