// Package blogClient is the client-side session and request layer of the
// academic blog.
//
// A [Client] owns three collaborators: a session store that persists and
// validates the user's token, a request gateway that every backend call goes
// through, and a route guard that decides whether a navigation may proceed.
// Build one with [New]:
//
//	c, err := blogClient.New().
//		WithConfig(cfg).
//		WithEventSink(sink).
//		Build()
//
// Client methods are safe for concurrent use after Build.
//
// # Architecture boundaries
//
// blogClient is the public surface and the only place where effects happen:
// request failures become notification or redirect [Event]s here, and
// authentication failures on protected requests clear the session here. The
// gateway, session and guard packages stay free of those effects.
//
// # What this package must NOT do
//
//   - Emit more than one event per final request failure.
//   - Redirect more than once for a burst of failures on the same token.
//   - Hold locks across network I/O.
package blogClient
