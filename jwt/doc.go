// Package jwt inspects bearer tokens on the client side.
//
// The client never holds the backend signing key, so tokens are decoded without
// signature verification. The decoded claims are advisory: they let the session
// store skip a validation round-trip for a token that has visibly expired and give
// a fallback user id and role list when a profile response omits them. The server
// remains the authority on validity.
//
// # What this package must NOT do
//
//   - Treat an unverified token as proof of identity.
//   - Perform network I/O.
//   - Import blogClient, session or gateway.
package jwt
