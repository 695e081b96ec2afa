// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Defines the bidirectional byte-stream transport abstraction (spec §4.1).
// Concrete implementations (plaintext TCP, TLS-wrapped TCP) live in
// internal/transport; this package only carries the contract so that
// internal/framing, internal/wsproto, internal/session, server, and client
// can all depend on it without importing internal/transport directly.
package api

import (
	"context"
	"net"
)

// Transport exposes a bounded, bidirectional byte stream over a socket that
// may be plaintext or TLS-wrapped.
type Transport interface {
	// Handshake performs any protocol negotiation (TLS, if configured) and
	// starts the transport's internal I/O loops. Idempotent once completed.
	Handshake(ctx context.Context) error

	// Read consumes bytes from the transport's inbound buffer, blocking until
	// at least one byte is available, the buffer is exhausted at EOF (0, io.EOF),
	// or ctx is done.
	Read(ctx context.Context, p []byte) (int, error)

	// Write appends bytes to the transport's outbound buffer without
	// blocking; backpressure is applied by Flush once the buffer's pause
	// threshold is reached.
	Write(ctx context.Context, p []byte) (int, error)

	// Flush pushes buffered outbound bytes toward the socket. It suspends
	// while the underlying write would block; IsBackpressured observers key
	// off that suspension.
	Flush(ctx context.Context) error

	// Close performs a graceful shutdown of both directions. Safe to call
	// concurrently with in-flight Read/Write/Flush calls; returns only after
	// internal I/O loops have exited and the socket is closed.
	Close() error

	// RemoteAddr returns the peer's network address.
	RemoteAddr() net.Addr

	// SetOnSocketError registers a hook invoked for transport errors that are
	// not a normal/expected disconnect (spec §4.1 socket-error policy).
	SetOnSocketError(fn func(error))
}
