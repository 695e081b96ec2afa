// File: client/tcp_client.go
// Author: momentics <momentics@gmail.com>
//
// Raw TCP client orchestrator: connect, optional auto-reconnect, message
// loop, send (spec §4.11 "TCP connect"/"Auto-reconnect"). Grounded on the
// teacher's client/client.go connect()/dialAndHandshake()/recvLoop retry
// shape, generalized from the teacher's fixed "dial, upgrade, recv frames"
// sequence to plain framed TCP with a pluggable Framer.
package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/internal/framing"
	"github.com/suleymanbyzt/StormSocket/internal/session"
)

// TCPClient implements the spec §4.11 client orchestrator for raw TCP.
type TCPClient struct {
	cfg *TCPClientConfig

	sessMu sync.Mutex
	sess   *session.TCPSession
	cancel context.CancelFunc
	closed int32

	OnConnected    api.ConnectedHandler
	OnDisconnected api.DisconnectedHandler
	OnDataReceived api.DataHandler
	OnError        api.ErrorHandler
	OnReconnecting api.ReconnectingHandler
}

// NewTCPClient constructs a TCPClient from cfg.
func NewTCPClient(cfg *TCPClientConfig) *TCPClient {
	return &TCPClient{cfg: cfg}
}

// Connect starts the connect loop in the background and waits (bounded by
// ctx) for its first outcome. Without reconnect, that is the result of the
// single connect attempt. With reconnect enabled, failed attempts are
// retried per cfg.Reconnect and Connect returns nil on the first successful
// connect, or an error once max_attempts is exceeded.
func (c *TCPClient) Connect(ctx context.Context) error {
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

func (c *TCPClient) runLoop(ctx context.Context, sendFirst func(error)) {
	attempt := 0
	for {
		sess, pipe, err := c.connectOnce(ctx)
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
				sendFirst(fmt.Errorf("client: max reconnect attempts reached: %w", err))
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
		runErr := pipe.Run(ctx)
		_ = sess.Close()
		if c.OnDisconnected != nil {
			c.OnDisconnected(sess)
		}

		if ctx.Err() != nil {
			return
		}
		if runErr != nil && c.OnError != nil {
			c.OnError(sess, runErr)
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

func (c *TCPClient) connectOnce(ctx context.Context) (*session.TCPSession, *framing.PipeConnection, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	tr, err := dial(dialCtx, c.cfg.Endpoint, c.cfg.SocketTuning, c.cfg.TLS, c.cfg.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := tr.Handshake(dialCtx); err != nil {
		_ = tr.Close()
		return nil, nil, err
	}

	framer := c.cfg.Framer()
	var sess *session.TCPSession
	pipe := framing.NewPipeConnection(tr, framer, func(data []byte) {
		sess.AddBytesReceived(uint64(len(data)))
		if c.OnDataReceived != nil {
			c.OnDataReceived(sess, data)
		}
	})
	sess = session.NewTCPSession(tr, pipe, api.PolicyWait)
	pipe.SetOnBackpressureDetected(func() {
		if sess.Policy() == api.PolicyDisconnect {
			sess.Abort()
		}
	})

	c.sessMu.Lock()
	c.sess = sess
	c.sessMu.Unlock()

	return sess, pipe, nil
}

// Send transmits data through the current session (spec §4.11 "Send.
// Requires state Connected; fails otherwise").
func (c *TCPClient) Send(data []byte) error {
	c.sessMu.Lock()
	sess := c.sess
	c.sessMu.Unlock()
	if sess == nil {
		return api.ErrTransportClosed
	}
	return sess.Send(data)
}

// Close stops the client, cancelling any in-progress reconnect loop and
// closing the current session.
func (c *TCPClient) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.sessMu.Lock()
	sess := c.sess
	c.sessMu.Unlock()
	if sess != nil {
		return sess.Close()
	}
	return nil
}

func sleepOrCancel(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
