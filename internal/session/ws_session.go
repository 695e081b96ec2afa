// File: internal/session/ws_session.go
// Author: momentics <momentics@gmail.com>
//
// WSSession wires base session bookkeeping to a raw transport plus the
// RFC 6455 frame codec and heartbeat (spec §3 "WebSocket Session"). Grounded
// on the teacher's internal/websocket/connection.go send/close/heartbeat
// wiring, rebuilt around internal/wsproto instead of the teacher's
// protocol.WSFrame type.
package session

import (
	"context"
	"encoding/binary"
	"sync/atomic"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/internal/wsproto"
)

// WSSession implements api.Session over a raw Transport, producing RFC 6455
// frames. isClient controls masking direction: client-originated frames are
// masked, server-originated frames are not (spec §4.4 "Encode").
type WSSession struct {
	*base
	transport         api.Transport
	isClient          bool
	heartbeat         *wsproto.Heartbeat
	backpressureFired int32 // atomic bool, CAS'd once, on the first suspended flush of the session
}

// NewWSSession constructs a WSSession. heartbeat may be nil when disabled
// (ping_interval == 0, spec §4.6).
func NewWSSession(transport api.Transport, isClient bool, policy api.SlowConsumerPolicy, heartbeat *wsproto.Heartbeat) *WSSession {
	s := &WSSession{base: newBase(transport.RemoteAddr(), policy), transport: transport, isClient: isClient, heartbeat: heartbeat}

	s.write = func(ctx context.Context, data []byte) error {
		return s.writeFrame(ctx, wsproto.OpcodeBinary, data)
	}
	s.doClose = func() error {
		// base.Close already holds writeMu around doClose.
		_ = s.writeFrame(context.Background(), wsproto.OpcodeClose, closePayload(1000, ""))
		if s.heartbeat != nil {
			s.heartbeat.Stop()
		}
		return transport.Close()
	}
	s.doAbort = func() {
		if s.heartbeat != nil {
			s.heartbeat.Stop()
		}
		_ = transport.Close()
	}
	s.setState(api.StateConnected)
	return s
}

// Send transmits data via the generic Session contract (api.Session.Send),
// framed as Binary. Use SendText explicitly for Text frames.
func (s *WSSession) Send(data []byte) error {
	return s.send(context.Background(), data, s.write)
}

// SendText transmits data as a Text frame.
func (s *WSSession) SendText(data []byte) error {
	return s.send(context.Background(), data, func(ctx context.Context, data []byte) error {
		return s.writeFrame(ctx, wsproto.OpcodeText, data)
	})
}

// SendBinary transmits data as a Binary frame.
func (s *WSSession) SendBinary(data []byte) error {
	return s.send(context.Background(), data, s.write)
}

// SendPong emits a Pong frame echoing payload, bypassing the slow-consumer
// policy (control frames are never dropped, spec §4.10 "auto_pong").
func (s *WSSession) SendPong(payload []byte) error {
	return s.writeFrameLocked(context.Background(), wsproto.OpcodePong, payload)
}

// SendPing emits a Ping frame; used by the heartbeat's onPing callback.
func (s *WSSession) SendPing(payload []byte) error {
	return s.writeFrameLocked(context.Background(), wsproto.OpcodePing, payload)
}

// OnPongReceived forwards a received Pong to the heartbeat timer
// (spec §4.6 "on_pong_received").
func (s *WSSession) OnPongReceived() {
	if s.heartbeat != nil {
		s.heartbeat.OnPongReceived()
	}
}

// writeFrame encodes and writes one frame, then flushes. The flush runs on
// its own goroutine so a suspended flush (the peer never draining its
// socket) can be observed immediately rather than only after it completes;
// under PolicyDisconnect, that first observation aborts the session right
// away instead of leaving this call blocked indefinitely (spec §4.7 "if
// is_backpressured is observed, call abort() and return immediately").
func (s *WSSession) writeFrame(ctx context.Context, op wsproto.Opcode, payload []byte) error {
	encoded, err := wsproto.EncodeFrame(op, payload, s.isClient)
	if err != nil {
		return err
	}
	if _, err := s.transport.Write(ctx, encoded); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- s.transport.Flush(ctx) }()
	select {
	case err := <-done:
		return err
	default:
	}
	if s.Policy() == api.PolicyDisconnect && atomic.CompareAndSwapInt32(&s.backpressureFired, 0, 1) {
		s.Abort()
	}
	return <-done
}

// writeFrameLocked takes the write lock directly, for control frames (pong,
// ping, close) that must not go through the slow-consumer policy checks in
// base.send but must still never interleave with a user send.
func (s *WSSession) writeFrameLocked(ctx context.Context, op wsproto.Opcode, payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.writeFrame(ctx, op, payload)
}

func closePayload(status uint16, reason string) []byte {
	out := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(out, status)
	copy(out[2:], reason)
	return out
}

// CloseWithStatus performs the graceful close sequence with a specific
// close status (spec §4.10 "Close: echo a Close with the peer's status").
// Unlike Close, which always emits status 1000, this is used when the
// server/client is echoing a status it decoded from the peer's own Close
// frame.
func (s *WSSession) CloseWithStatus(status uint16) error {
	if !s.closeOnce(status) {
		return nil
	}
	return nil
}

func (s *WSSession) closeOnce(status uint16) bool {
	if !s.compareAndSwapCloseGuard() {
		return false
	}
	s.setState(api.StateClosing)
	s.writeMu.Lock()
	_ = s.writeFrame(context.Background(), wsproto.OpcodeClose, closePayload(wsproto.SanitizeCloseStatus(status), ""))
	if s.heartbeat != nil {
		s.heartbeat.Stop()
	}
	_ = s.transport.Close()
	s.writeMu.Unlock()
	s.setState(api.StateClosed)
	return true
}
