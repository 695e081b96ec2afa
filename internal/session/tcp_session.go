// File: internal/session/tcp_session.go
// Author: momentics <momentics@gmail.com>
//
// TCPSession wires base session bookkeeping to a PipeConnection and a raw
// transport (spec §3 "TCP Session additionally holds a reference to its
// PipeConnection and a raw-bytes framer"). Grounded on the teacher's
// internal/websocket/connection.go send/close wiring pattern, adapted from
// WS frames to arbitrary framed payloads.
package session

import (
	"context"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/internal/framing"
)

// TCPSession implements api.Session over a PipeConnection.
type TCPSession struct {
	*base
	transport api.Transport
	pipe      *framing.PipeConnection
}

// NewTCPSession constructs a TCPSession. The caller is responsible for
// starting pipe.Run in its own goroutine.
func NewTCPSession(transport api.Transport, pipe *framing.PipeConnection, policy api.SlowConsumerPolicy) *TCPSession {
	s := &TCPSession{base: newBase(transport.RemoteAddr(), policy), transport: transport, pipe: pipe}
	s.write = func(ctx context.Context, data []byte) error {
		return pipe.Send(ctx, data)
	}
	s.doClose = func() error {
		return transport.Close()
	}
	s.doAbort = func() {
		_ = transport.Close()
	}
	s.setState(api.StateConnected)
	return s
}

// Send transmits data through the framer/transport, applying the
// slow-consumer policy.
func (s *TCPSession) Send(data []byte) error {
	return s.send(context.Background(), data, s.write)
}
