// Package session owns the client's authentication state and its persistence.
//
// A [Store] holds one [Session] value (token, user profile, initialized flag) and
// is the only writer of that value. Initialization is single-flight: any number of
// concurrent [Store.Initialize] calls share one validation round-trip. Every
// mutation is mirrored to a durable [Storage] under the keys "token" and
// "userInfo".
//
// # Storage backends
//
// [MemoryStorage] for tests and short-lived processes, [FileStorage] for a single
// JSON document replaced atomically, [BoltStorage] for an embedded database and
// [RedisStorage] for a credential shared between processes. Storage writes never
// fail a session operation; errors are logged.
//
// # Architecture boundaries
//
// The store talks to the backend only through a [Sender], normally a
// *gateway.Gateway. It never emits notifications or redirects; callers react to
// the values it returns.
//
// # What this package must NOT do
//
//   - Hold its mutex across network or storage I/O.
//   - Import blogClient or guard.
//   - Trust persisted data without decoding and validating it.
package session
