// File: server/tcp_server.go
// Author: momentics <momentics@gmail.com>
//
// TCP server orchestrator: listen/accept, max-connections gating, per-
// connection PipeConnection read loop, lifecycle events, broadcast, graceful
// shutdown (spec §4.10). Grounded on the teacher's server/server.go accept
// loop and middleware-wrapping shape, generalized from the teacher's
// NUMA/reactor-backed listener (transport.NewWebSocketListener) to a plain
// net.Listener over internal/transport.TCPTransport.
package server

import (
	"context"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/internal/framing"
	"github.com/suleymanbyzt/StormSocket/internal/session"
	"github.com/suleymanbyzt/StormSocket/internal/transport"
	"github.com/suleymanbyzt/StormSocket/middleware"
)

// TCPServer implements the spec §4.10 server orchestrator for raw TCP.
type TCPServer struct {
	cfg        *Config
	middleware *middleware.Pipeline
	sessions   *session.Manager
	groups     *session.Groups

	listener net.Listener

	OnConnected    api.ConnectedHandler
	OnDisconnected api.DisconnectedHandler
	OnDataReceived api.DataHandler
	OnError        api.ErrorHandler
	OnSocketError  api.SocketErrorHandler

	shutdownCh chan struct{}
	closeOnce  sync.Once
	acceptWG   sync.WaitGroup
	connWG     sync.WaitGroup
}

// NewTCPServer constructs a TCPServer from cfg, applying opts.
func NewTCPServer(cfg *Config, opts ...Option) *TCPServer {
	for _, o := range opts {
		o(cfg)
	}
	return &TCPServer{
		cfg:        cfg,
		middleware: middleware.New(),
		sessions:   session.NewManager(),
		groups:     session.NewGroups(),
		shutdownCh: make(chan struct{}),
	}
}

// Use registers middleware, must be called before Start (spec §4.9
// "immutable after registration").
func (s *TCPServer) Use(mw ...middleware.Middleware) {
	s.middleware = middleware.New(mw...)
}

// Sessions exposes the session manager for broadcast/lookup by callers.
func (s *TCPServer) Sessions() *session.Manager { return s.sessions }

// Groups exposes the group registry.
func (s *TCPServer) Groups() *session.Groups { return s.groups }

// Addr returns the bound listener address, or nil before Start.
func (s *TCPServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start binds the listener and begins accepting connections in the
// background (spec §4.10 "Listen/accept").
func (s *TCPServer) Start() error {
	ln, err := transport.Listen("tcp", s.cfg.Endpoint, s.cfg.DualMode)
	if err != nil {
		return err
	}
	s.listener = ln

	s.acceptWG.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *TCPServer) acceptLoop() {
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

// handleConn implements spec §4.10 "Per-connection handling" for raw TCP.
func (s *TCPServer) handleConn(conn net.Conn) {
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

	framer := s.cfg.Framer()
	var sess *session.TCPSession
	pipe := framing.NewPipeConnection(tr, framer, func(data []byte) {
		sess.AddBytesReceived(uint64(len(data)))
		out := s.middleware.DataReceived(sess, data)
		if out == nil {
			return
		}
		if s.OnDataReceived != nil {
			s.OnDataReceived(sess, out)
		}
	})
	sess = session.NewTCPSession(tr, pipe, s.cfg.SlowConsumerPolicy)
	sess.SetSendFilter(func(data []byte) []byte { return s.middleware.DataSending(sess, data) })
	pipe.SetOnBackpressureDetected(func() {
		if s.cfg.SlowConsumerPolicy == api.PolicyDisconnect {
			sess.Abort()
		}
	})

	tr.SetOnSocketError(func(err error) {
		if s.OnSocketError != nil {
			s.OnSocketError(sess, err)
		}
	})

	if !s.sessions.TryAdd(sess) {
		sess.Abort()
		return
	}

	s.middleware.Connected(sess)
	if s.OnConnected != nil {
		s.OnConnected(sess)
	}

	err := pipe.Run(context.Background())
	if err != nil {
		s.middleware.Error(sess, err)
		if s.OnError != nil {
			s.OnError(sess, err)
		}
	}

	_ = sess.Close()
	s.sessions.TryRemove(sess.ID())
	s.groups.RemoveFromAll(sess)
	s.middleware.Disconnected(sess)
	if s.OnDisconnected != nil {
		s.OnDisconnected(sess)
	}
	logger.Debugf("session %d closed", sess.ID())
}

// Broadcast sends data to every connected session except excludeID
// (spec §4.10 "Broadcast").
func (s *TCPServer) Broadcast(data []byte, excludeID uint64) {
	s.sessions.Broadcast(data, excludeID)
}

// Shutdown cancels the accept loop, closes the listener, and closes every
// session (spec §4.10 "Shutdown").
func (s *TCPServer) Shutdown() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdownCh)
		if s.listener != nil {
			err = s.listener.Close()
		}
		s.acceptWG.Wait()
		s.sessions.CloseAll()
		s.connWG.Wait()
	})
	return err
}
