// Package roles provides the normalized role set carried by a user profile and the
// single boundary function that turns loosely shaped role data into it.
//
// # Normalization
//
// [Parse] accepts a string, a JSON array encoded in a string, a string slice, a
// slice of arbitrary values, or role objects ({"roleName"|"name"|"authority": ...}).
// Every entry is trimmed, upper-cased and prefixed with ROLE_ when the prefix is
// missing. The localized administrator alias maps to [Admin]. Anything else is
// dropped.
//
// # What this package must NOT do
//
//   - Perform I/O.
//   - Import blogClient, session, gateway or guard.
//   - Grant admin on substring matches ("admin" inside another role name).
package roles
