// File: server/ws_server.go
// Author: momentics <momentics@gmail.com>
//
// WebSocket server orchestrator: upgrade sequence with handshake_timeout,
// authorization hook, frame decode loop with control-frame handling,
// heartbeat wiring, broadcast_text/broadcast_binary, graceful shutdown
// emitting GoingAway (spec §4.10). Grounded on the teacher's
// server/server.go accept loop generalized from its NUMA/reactor-backed
// transport.WebSocketListener to internal/wsproto's upgrade parser plus
// internal/transport.TCPTransport, since the teacher's listener bundles
// upgrade parsing into a component this rewrite replaces outright.
package server

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/internal/session"
	"github.com/suleymanbyzt/StormSocket/internal/transport"
	"github.com/suleymanbyzt/StormSocket/internal/wsproto"
	"github.com/suleymanbyzt/StormSocket/middleware"
)

// WSServer implements the spec §4.10 server orchestrator for RFC 6455
// WebSocket.
type WSServer struct {
	cfg        *Config
	middleware *middleware.Pipeline
	sessions   *session.Manager
	groups     *session.Groups

	listener net.Listener

	OnConnecting   api.ConnectingHandler
	OnConnected    api.ConnectedHandler
	OnDisconnected api.DisconnectedHandler
	OnMessage      api.MessageHandler
	OnError        api.ErrorHandler
	OnSocketError  api.SocketErrorHandler

	shutdownCh chan struct{}
	closeOnce  sync.Once
	acceptWG   sync.WaitGroup
	connWG     sync.WaitGroup
}

// NewWSServer constructs a WSServer from cfg, applying opts.
func NewWSServer(cfg *Config, opts ...Option) *WSServer {
	for _, o := range opts {
		o(cfg)
	}
	return &WSServer{
		cfg:        cfg,
		middleware: middleware.New(),
		sessions:   session.NewManager(),
		groups:     session.NewGroups(),
		shutdownCh: make(chan struct{}),
	}
}

// Use registers middleware, must be called before Start.
func (s *WSServer) Use(mw ...middleware.Middleware) {
	s.middleware = middleware.New(mw...)
}

// Sessions exposes the session manager for broadcast/lookup by callers.
func (s *WSServer) Sessions() *session.Manager { return s.sessions }

// Groups exposes the group registry.
func (s *WSServer) Groups() *session.Groups { return s.groups }

// Addr returns the bound listener address, or nil before Start.
func (s *WSServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start binds the listener and begins accepting connections.
func (s *WSServer) Start() error {
	ln, err := transport.Listen("tcp", s.cfg.Endpoint, s.cfg.DualMode)
	if err != nil {
		return err
	}
	s.listener = ln

	s.acceptWG.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *WSServer) acceptLoop() {
	defer s.acceptWG.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdownCh:
				return
			default:
				continue
			}
		}
		s.connWG.Add(1)
		go s.handleConn(conn)
	}
}

// handleConn implements spec §4.10 steps 1-8 for WebSocket.
func (s *WSServer) handleConn(conn net.Conn) {
	defer s.connWG.Done()

	if s.cfg.MaxConnections > 0 && s.sessions.Count() >= s.cfg.MaxConnections {
		_ = conn.Close()
		return
	}

	transport.ApplySocketTuning(conn, s.cfg.SocketTuning.NoDelay, s.cfg.SocketTuning.KeepAlive)

	traceID := uuid.NewString()
	logger := api.WithTraceID(s.cfg.Logger, traceID)
	logger.Debugf("accepted connection from %s", conn.RemoteAddr())

	tr := newServerTransport(conn, s.cfg, logger)
	if err := tr.Handshake(context.Background()); err != nil {
		_ = tr.Close()
		return
	}

	req, err := s.runUpgradeSequence(tr)
	if err != nil || req == nil {
		_ = tr.Close()
		return
	}

	var heartbeat *wsproto.Heartbeat
	var sess *session.WSSession
	if s.cfg.WebSocket.Heartbeat.PingInterval > 0 {
		heartbeat = wsproto.NewHeartbeat(
			s.cfg.WebSocket.Heartbeat.PingInterval,
			s.cfg.WebSocket.Heartbeat.MaxMissedPongs,
			func() { _ = sess.SendPing(nil) },
			func() { sess.Abort() },
		)
	}
	sess = session.NewWSSession(tr, false, s.cfg.SlowConsumerPolicy, heartbeat)
	sess.SetSendFilter(func(data []byte) []byte { return s.middleware.DataSending(sess, data) })

	tr.SetOnSocketError(func(err error) {
		if s.OnSocketError != nil {
			s.OnSocketError(sess, err)
		}
	})

	if !s.sessions.TryAdd(sess) {
		sess.Abort()
		return
	}

	if heartbeat != nil {
		heartbeat.Start()
	}

	s.middleware.Connected(sess)
	if s.OnConnected != nil {
		s.OnConnected(sess)
	}

	s.runFrameLoop(tr, sess)

	_ = sess.Close()
	s.sessions.TryRemove(sess.ID())
	s.groups.RemoveFromAll(sess)
	s.middleware.Disconnected(sess)
	if s.OnDisconnected != nil {
		s.OnDisconnected(sess)
	}
	logger.Debugf("session %d closed", sess.ID())
}

// runUpgradeSequence implements spec §4.5/§4.10's server-side handshake,
// bounded by handshake_timeout. On any validation failure, origin rejection,
// or authorization rejection it writes the appropriate response and returns
// an error so the caller closes the connection without creating a session.
func (s *WSServer) runUpgradeSequence(tr api.Transport) (*wsproto.UpgradeRequest, error) {
	deadline := time.Now().Add(s.cfg.WebSocket.HandshakeTimeout)
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	var buf []byte
	chunk := make([]byte, 4096)
	var req *wsproto.UpgradeRequest

	for {
		n, err := tr.Read(ctx, chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			parsed, rest, perr := wsproto.ParseUpgradeRequest(buf)
			if perr != nil {
				if ue, ok := perr.(*wsproto.UpgradeError); ok {
					_, _ = tr.Write(ctx, wsproto.BuildErrorResponse(ue))
					_ = tr.Flush(ctx)
				}
				return nil, perr
			}
			if parsed != nil {
				req = parsed
				buf = rest
				break
			}
			buf = rest
		}
		if err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	if !wsproto.ValidateOrigin(req.Origin, s.cfg.WebSocket.AllowedOrigins) {
		ue := &wsproto.UpgradeError{Kind: wsproto.UpgradeErrForbiddenOrigin, Reason: "Origin not allowed"}
		_, _ = tr.Write(ctx, wsproto.BuildErrorResponse(ue))
		_ = tr.Flush(ctx)
		return nil, ue
	}

	if s.OnConnecting != nil {
		uctx := api.NewUpgradeContext(req.Path, req.QueryString, req.Query, req.Headers, req.Key, tr.RemoteAddr())
		s.OnConnecting(uctx)
		if uctx.Handled() && !uctx.Accepted() {
			_, _ = tr.Write(ctx, wsproto.BuildRejectResponse(uctx.RejectStatus(), uctx.RejectReason()))
			_ = tr.Flush(ctx)
			return nil, api.ErrAlreadyHandled
		}
	}

	if _, err := tr.Write(ctx, wsproto.BuildSuccessResponse(req.Key)); err != nil {
		return nil, err
	}
	if err := tr.Flush(ctx); err != nil {
		return nil, err
	}
	return req, nil
}

// runFrameLoop implements spec §4.10 "Frame handling (WebSocket server)".
func (s *WSServer) runFrameLoop(tr api.Transport, sess *session.WSSession) {
	ctx := context.Background()
	for {
		frame, err := readFrame(ctx, tr, s.cfg.WebSocket.MaxFrameSize)
		if err != nil {
			if pe, ok := err.(*wsproto.ProtocolError); ok {
				_ = sess.CloseWithStatus(uint16(pe.Status))
				s.middleware.Error(sess, pe)
				if s.OnError != nil {
					s.OnError(sess, pe)
				}
			}
			return
		}
		switch frame.Opcode {
		case wsproto.OpcodeText, wsproto.OpcodeBinary:
			sess.AddBytesReceived(uint64(len(frame.Payload)))
			out := s.middleware.DataReceived(sess, frame.Payload)
			if out != nil && s.OnMessage != nil {
				s.OnMessage(sess, out, frame.Opcode == wsproto.OpcodeText)
			}
		case wsproto.OpcodePing:
			if s.cfg.WebSocket.Heartbeat.AutoPong {
				_ = sess.SendPong(frame.Payload)
			}
		case wsproto.OpcodePong:
			sess.OnPongReceived()
		case wsproto.OpcodeClose:
			status := uint16(1000)
			if len(frame.Payload) >= 2 {
				status = uint16(frame.Payload[0])<<8 | uint16(frame.Payload[1])
			}
			_ = sess.CloseWithStatus(status)
			return
		}
	}
}

func readFrame(ctx context.Context, tr api.Transport, maxFrameSize int) (*wsproto.Frame, error) {
	return wsproto.DecodeFrame(&transportReader{ctx: ctx, tr: tr}, maxFrameSize)
}

// transportReader adapts api.Transport.Read to io.Reader for
// wsproto.DecodeFrame, which needs io.ReadFull semantics.
type transportReader struct {
	ctx context.Context
	tr  api.Transport
}

func (r *transportReader) Read(p []byte) (int, error) {
	return r.tr.Read(r.ctx, p)
}

// BroadcastText sends a Text frame to every connected session except
// excludeID.
func (s *WSServer) BroadcastText(data []byte, excludeID uint64) {
	s.broadcastOp(data, excludeID, true)
}

// BroadcastBinary sends a Binary frame to every connected session except
// excludeID.
func (s *WSServer) BroadcastBinary(data []byte, excludeID uint64) {
	s.broadcastOp(data, excludeID, false)
}

func (s *WSServer) broadcastOp(data []byte, excludeID uint64, text bool) {
	var wg sync.WaitGroup
	s.sessions.Range(func(sess api.Session) {
		if sess.ID() == excludeID {
			return
		}
		ws, ok := sess.(*session.WSSession)
		if !ok {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if text {
				_ = ws.SendText(data)
			} else {
				_ = ws.SendBinary(data)
			}
		}()
	})
	wg.Wait()
}

// Shutdown cancels the accept loop, closes the listener, emits a GoingAway
// close frame to every session, then closes them (spec §4.10 "Shutdown").
func (s *WSServer) Shutdown() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdownCh)
		if s.listener != nil {
			err = s.listener.Close()
		}
		s.acceptWG.Wait()
		s.sessions.Range(func(sess api.Session) {
			if ws, ok := sess.(*session.WSSession); ok {
				_ = ws.CloseWithStatus(1001)
			}
		})
		s.sessions.CloseAll()
		s.connWG.Wait()
	})
	return err
}
