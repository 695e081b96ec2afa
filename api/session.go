// File: api/session.go
// Author: momentics <momentics@gmail.com>
//
// Session is the contract shared by TCP and WebSocket sessions, and is the
// type passed to every middleware stage and lifecycle event handler. Concrete
// implementations live in package session (internal/session); TCP- and
// WebSocket-specific sends are exposed through type assertions where the
// caller already knows the transport flavor (server/client packages do).
package api

import "net"

// Session is a live bidirectional endpoint with identity, metrics, group
// membership, and a slow-consumer policy (spec §3).
type Session interface {
	// ID returns the process-wide monotonically increasing session id.
	ID() uint64

	// State returns the current lifecycle state.
	State() SessionState

	// RemoteAddr returns the peer's network address, if known.
	RemoteAddr() net.Addr

	// Metrics returns an immutable snapshot of the session's counters.
	Metrics() Snapshot

	// IsBackpressured reports whether an outbound flush is currently awaiting
	// drain.
	IsBackpressured() bool

	// Policy returns the configured slow-consumer policy.
	Policy() SlowConsumerPolicy

	// Groups returns a snapshot of the group names this session belongs to.
	Groups() []string

	// JoinGroup adds the session to a named group.
	JoinGroup(name string)

	// LeaveGroup removes the session from a named group.
	LeaveGroup(name string)

	// Send writes data through the session's framer/codec, serialized with
	// every other outbound write on this session (spec §4.7).
	Send(data []byte) error

	// Close performs a graceful close: for WebSocket this emits a Close
	// frame before tearing down the transport. Idempotent.
	Close() error

	// Abort performs an immediate, frame-less teardown. Idempotent.
	Abort()
}
