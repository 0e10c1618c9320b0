// Package audit provides the asynchronous dispatcher behind blogClient event
// sinks.
//
// A [Dispatcher] decouples event producers (request failures, session changes,
// guard notices) from a possibly slow sink. With DropIfFull set, Emit never
// blocks and overflow is counted instead.
package audit
