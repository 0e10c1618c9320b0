// Package gateway is the outbound request layer of the blog client.
//
// Every backend call goes through Gateway.Send. The gateway encodes the JSON body,
// attaches default headers and the bearer token, classifies failures into a small
// closed set of kinds, retries idempotent requests with exponential backoff and
// reports each final failure once to an ErrorHandler.
//
// # Architecture boundaries
//
// The gateway reads the current token through TokenSource and never imports the
// session package. Effects of a failure (notifications, redirects, clearing the
// session) belong to the ErrorHandler, usually the root Client. Classify and
// IsPublic are pure and can be used without a Gateway.
//
// # What this package must NOT do
//
//   - Hold or mutate session state.
//   - Retry non-idempotent methods.
//   - Report the same final failure more than once.
package gateway
