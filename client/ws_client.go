// File: client/ws_client.go
// Author: momentics <momentics@gmail.com>
//
// RFC 6455 WebSocket client orchestrator: resolve/connect, upgrade
// handshake, heartbeat, frame loop, auto-reconnect (spec §4.11 "WebSocket
// connect"/"Auto-reconnect"). Grounded on the teacher's client/client.go
// dialAndHandshake() (compose upgrade request, read response via
// bufio/net/http) and recvLoop()/heartbeatLoop(), rebuilt around
// internal/wsproto and internal/session.WSSession instead of the teacher's
// bespoke protocol.WSFrame client path.
package client

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/internal/session"
	"github.com/suleymanbyzt/StormSocket/internal/transport"
	"github.com/suleymanbyzt/StormSocket/internal/wsproto"
)

// WSClient implements the spec §4.11 client orchestrator for RFC 6455
// WebSocket.
type WSClient struct {
	cfg *WSClientConfig

	sessMu sync.Mutex
	sess   *session.WSSession
	cancel context.CancelFunc
	closed int32

	OnConnected    api.ConnectedHandler
	OnDisconnected api.DisconnectedHandler
	OnMessage      api.MessageHandler
	OnError        api.ErrorHandler
	OnReconnecting api.ReconnectingHandler
}

// NewWSClient constructs a WSClient from cfg.
func NewWSClient(cfg *WSClientConfig) *WSClient {
	return &WSClient{cfg: cfg}
}

// Connect resolves the URI, performs the RFC 6455 upgrade, and starts the
// frame loop, following the same first-attempt/reconnect-loop contract as
// TCPClient.Connect.
func (c *WSClient) Connect(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	firstCh := make(chan error, 1)
	var once sync.Once
	sendFirst := func(err error) { once.Do(func() { firstCh <- err }) }

	go c.runLoop(runCtx, sendFirst)

	select {
	case err := <-firstCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *WSClient) runLoop(ctx context.Context, sendFirst func(error)) {
	attempt := 0
	for {
		sess, reader, err := c.connectOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				sendFirst(ctx.Err())
				return
			}
			if !c.cfg.Reconnect.Enabled {
				sendFirst(err)
				return
			}
			attempt++
			if c.cfg.Reconnect.MaxAttempts > 0 && attempt > c.cfg.Reconnect.MaxAttempts {
				sendFirst(err)
				return
			}
			if c.OnReconnecting != nil {
				c.OnReconnecting(attempt, c.cfg.Reconnect.Delay)
			}
			if !sleepOrCancel(ctx, c.cfg.Reconnect.Delay) {
				return
			}
			continue
		}

		sendFirst(nil)
		attempt = 0

		if c.OnConnected != nil {
			c.OnConnected(sess)
		}
		c.runFrameLoop(ctx, reader, sess)
		_ = sess.Close()
		if c.OnDisconnected != nil {
			c.OnDisconnected(sess)
		}

		if ctx.Err() != nil {
			return
		}
		if !c.cfg.Reconnect.Enabled {
			return
		}
		attempt++
		if c.cfg.Reconnect.MaxAttempts > 0 && attempt > c.cfg.Reconnect.MaxAttempts {
			return
		}
		if c.OnReconnecting != nil {
			c.OnReconnecting(attempt, c.cfg.Reconnect.Delay)
		}
		if !sleepOrCancel(ctx, c.cfg.Reconnect.Delay) {
			return
		}
	}
}

func (c *WSClient) connectOnce(ctx context.Context) (*session.WSSession, *leftoverReader, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	u, err := url.Parse(c.cfg.URI)
	if err != nil {
		return nil, nil, err
	}

	tlsCfg := c.cfg.TLS
	if tlsCfg == nil && u.Scheme == "wss" {
		tlsCfg = &transport.ClientTLSConfig{ServerName: u.Hostname()}
	}

	tr, err := dial(dialCtx, hostPort(u), c.cfg.SocketTuning, tlsCfg, c.cfg.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := tr.Handshake(dialCtx); err != nil {
		_ = tr.Close()
		return nil, nil, err
	}

	req, reqBytes, err := wsproto.BuildClientRequest(u, http.Header(c.cfg.ExtraHeaders))
	if err != nil {
		_ = tr.Close()
		return nil, nil, err
	}
	if _, err := tr.Write(dialCtx, reqBytes); err != nil {
		_ = tr.Close()
		return nil, nil, err
	}
	if err := tr.Flush(dialCtx); err != nil {
		_ = tr.Close()
		return nil, nil, err
	}

	header, leftover, err := readHandshakeResponse(dialCtx, tr)
	if err != nil {
		_ = tr.Close()
		return nil, nil, err
	}
	if err := wsproto.ParseClientResponse(header, req); err != nil {
		_ = tr.Close()
		return nil, nil, err
	}

	var heartbeat *wsproto.Heartbeat
	var sess *session.WSSession
	if c.cfg.Heartbeat.PingInterval > 0 {
		heartbeat = wsproto.NewHeartbeat(
			c.cfg.Heartbeat.PingInterval,
			c.cfg.Heartbeat.MaxMissedPongs,
			func() { _ = sess.SendPing(nil) },
			func() { sess.Abort() },
		)
	}
	sess = session.NewWSSession(tr, true, api.PolicyWait, heartbeat)
	if heartbeat != nil {
		heartbeat.Start()
	}

	c.sessMu.Lock()
	c.sess = sess
	c.sessMu.Unlock()

	return sess, &leftoverReader{ctx: ctx, tr: tr, buf: leftover}, nil
}

// readHandshakeResponse accumulates bytes from tr until the response's
// header terminator arrives, returning the header bytes and any leftover
// (possibly already-arrived frame bytes) separately (spec §4.5 "Parse
// response: ... read bytes until the 101 response is fully parsed").
func readHandshakeResponse(ctx context.Context, tr api.Transport) (header, leftover []byte, err error) {
	var buf []byte
	chunk := make([]byte, 4096)
	for {
		n, rerr := tr.Read(ctx, chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if idx := indexHeaderEnd(buf); idx >= 0 {
				return buf[:idx], buf[idx:], nil
			}
		}
		if rerr != nil {
			return nil, nil, rerr
		}
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
	}
}

func indexHeaderEnd(buf []byte) int {
	const sep = "\r\n\r\n"
	for i := 0; i+len(sep) <= len(buf); i++ {
		if string(buf[i:i+len(sep)]) == sep {
			return i + len(sep)
		}
	}
	return -1
}

// hostPort resolves host:port for dialing, defaulting to 80/443 per scheme
// (spec §4.5 "Host header including port unless 80/443").
func hostPort(u *url.URL) string {
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		if u.Scheme == "wss" {
			port = "443"
		} else {
			port = "80"
		}
	}
	return host + ":" + port
}

// leftoverReader prepends bytes already consumed while parsing the upgrade
// response to the transport's read stream, so the frame decoder never loses
// bytes that arrived in the same TCP segment as the handshake response.
type leftoverReader struct {
	ctx context.Context
	tr  api.Transport
	buf []byte
}

func (r *leftoverReader) Read(p []byte) (int, error) {
	if len(r.buf) > 0 {
		n := copy(p, r.buf)
		r.buf = r.buf[n:]
		return n, nil
	}
	return r.tr.Read(r.ctx, p)
}

// runFrameLoop mirrors the server's frame loop symmetrically (spec §4.11
// "Run the frame loop (handles Text/Binary/Ping (auto-pong)/Pong/Close
// symmetrically to the server)").
func (c *WSClient) runFrameLoop(ctx context.Context, reader *leftoverReader, sess *session.WSSession) {
	for {
		frame, err := wsproto.DecodeFrame(reader, c.cfg.MaxFrameSize)
		if err != nil {
			if pe, ok := err.(*wsproto.ProtocolError); ok {
				_ = sess.CloseWithStatus(uint16(pe.Status))
				if c.OnError != nil {
					c.OnError(sess, pe)
				}
			}
			return
		}
		switch frame.Opcode {
		case wsproto.OpcodeText, wsproto.OpcodeBinary:
			sess.AddBytesReceived(uint64(len(frame.Payload)))
			if c.OnMessage != nil {
				c.OnMessage(sess, frame.Payload, frame.Opcode == wsproto.OpcodeText)
			}
		case wsproto.OpcodePing:
			_ = sess.SendPong(frame.Payload)
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

// SendText transmits data as a Text frame.
func (c *WSClient) SendText(data []byte) error {
	sess := c.currentSession()
	if sess == nil {
		return api.ErrTransportClosed
	}
	return sess.SendText(data)
}

// SendBinary transmits data as a Binary frame.
func (c *WSClient) SendBinary(data []byte) error {
	sess := c.currentSession()
	if sess == nil {
		return api.ErrTransportClosed
	}
	return sess.SendBinary(data)
}

func (c *WSClient) currentSession() *session.WSSession {
	c.sessMu.Lock()
	defer c.sessMu.Unlock()
	return c.sess
}

// Close stops the client, cancelling any in-progress reconnect loop and
// closing the current session with status 1000 NormalClosure.
func (c *WSClient) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	sess := c.currentSession()
	if sess != nil {
		return sess.Close()
	}
	return nil
}
