// File: internal/transport/transport.go
// Author: momentics <momentics@gmail.com>
//
// TCPTransport implements api.Transport over a net.Conn, with bounded
// inbound/outbound buffers providing kernel-like backpressure (spec §4.1).
// Grounded on the teacher's internal/transport/transport.go and
// internal/transport/transport_linux.go per-OS read/write loop split, and on
// protocol/connection.go's recvLoop/sendLoop pairing (generalized here from
// WebSocket frames to raw bytes, since framing is a layer above Transport).
package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"syscall"

	"github.com/suleymanbyzt/StormSocket/api"
)

// Options configures the bounded buffer thresholds for a TCPTransport (spec
// §6 ServerOptions/ClientOptions subset). NoDelay, KeepAlive and DualMode are
// carried alongside but TCPTransport does not read them; socket tuning is
// applied by ApplySocketTuning and Listen.
type Options struct {
	MaxPendingReceiveBytes int // 0 = unlimited
	MaxPendingSendBytes    int // 0 = unlimited
	NoDelay                bool
	KeepAlive              bool
	DualMode               bool
	Logger                 api.Logger
}

// DefaultOptions mirrors spec §6 server defaults.
func DefaultOptions() Options {
	return Options{
		MaxPendingReceiveBytes: 1 << 20,
		MaxPendingSendBytes:    1 << 20,
		NoDelay:                false,
		KeepAlive:              true,
		Logger:                 api.NopLogger{},
	}
}

// TCPTransport wraps a net.Conn with bounded buffers and read/write pumps.
type TCPTransport struct {
	conn net.Conn
	opts Options

	in  *inboundBuffer
	out *outboundQueue

	onSocketErr func(error)
	errMu       sync.Mutex

	startOnce sync.Once
	closeOnce sync.Once
	pumpsWG   sync.WaitGroup
}

// NewTCPTransport constructs a transport over an already-accepted/dialed
// connection. Socket tuning (TCP_NODELAY/keepalive) should already have been
// applied by the caller via ApplySocketTuning.
func NewTCPTransport(conn net.Conn, opts Options) *TCPTransport {
	if opts.Logger == nil {
		opts.Logger = api.NopLogger{}
	}
	return &TCPTransport{
		conn: conn,
		opts: opts,
		in:   newInboundBuffer(opts.MaxPendingReceiveBytes),
		out:  newOutboundQueue(opts.MaxPendingSendBytes),
	}
}

// Handshake starts the read/write pumps. Idempotent.
func (t *TCPTransport) Handshake(ctx context.Context) error {
	t.startOnce.Do(func() {
		t.pumpsWG.Add(2)
		go t.readPump()
		go t.writePump()
	})
	return nil
}

func (t *TCPTransport) RemoteAddr() net.Addr { return t.conn.RemoteAddr() }

func (t *TCPTransport) SetOnSocketError(fn func(error)) {
	t.errMu.Lock()
	t.onSocketErr = fn
	t.errMu.Unlock()
}

func (t *TCPTransport) reportSocketError(err error) {
	if err == nil || isExpectedDisconnect(err) {
		return
	}
	t.errMu.Lock()
	fn := t.onSocketErr
	t.errMu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// isExpectedDisconnect implements the socket-error policy of spec §4.1 /
// §7: normal/expected disconnects are swallowed rather than surfaced.
func isExpectedDisconnect(err error) bool {
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ESHUTDOWN) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return false
}

// readPump moves bytes from the socket into the inbound buffer, pausing
// once the buffer reaches its pause threshold and resuming at half (spec
// §4.1 hysteresis). Internal waits use context.Background(): closing the
// inbound buffer (done from Close) is what unblocks them, not a context.
func (t *TCPTransport) readPump() {
	defer t.pumpsWG.Done()
	defer t.in.Close()
	buf := make([]byte, 32*1024)
	pause := t.opts.MaxPendingReceiveBytes
	resume := pause / 2
	bg := context.Background()
	for {
		if pause > 0 && t.in.Size() >= pause {
			if err := t.in.waitAtMost(bg, resume); err != nil {
				return
			}
		}
		n, err := t.conn.Read(buf)
		if n > 0 {
			if pushErr := t.in.push(buf[:n]); pushErr != nil {
				return
			}
		}
		if err != nil {
			t.reportSocketError(err)
			return
		}
	}
}

// writePump drains the outbound queue and writes to the socket, one drain
// cycle at a time. This is what session Flush calls observe as backpressure
// when the queue cannot be drained to the resume threshold quickly enough.
func (t *TCPTransport) writePump() {
	defer t.pumpsWG.Done()
	bg := context.Background()
	for {
		data, err := t.out.drainAll(bg)
		if err != nil {
			return
		}
		if _, err := t.conn.Write(data); err != nil {
			t.reportSocketError(err)
			// Nothing will drain the queue any more; close it so a suspended
			// Flush returns instead of waiting forever.
			t.out.Close()
			return
		}
	}
}

// Read consumes bytes from the inbound buffer.
func (t *TCPTransport) Read(ctx context.Context, p []byte) (int, error) {
	n, err := t.in.readUpTo(ctx, p)
	if err != nil {
		if errors.Is(err, api.ErrTransportClosed) {
			return n, io.EOF
		}
		return n, err
	}
	return n, nil
}

// Write enqueues bytes for the write pump to flush.
func (t *TCPTransport) Write(ctx context.Context, p []byte) (int, error) {
	if err := t.out.push(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Flush blocks until the outbound queue has drained to its resume threshold
// (half the pause threshold), or returns immediately if it never reached the
// pause threshold to begin with. This is the suspension point that session
// write paths observe as is_backpressured.
func (t *TCPTransport) Flush(ctx context.Context) error {
	pause := t.opts.MaxPendingSendBytes
	if pause <= 0 {
		// unlimited: still wait for the queue to empty so Send() callers
		// observe their bytes as handed to the socket.
		return t.out.waitAtMost(ctx, 0)
	}
	if t.out.Size() < pause {
		return nil
	}
	return t.out.waitAtMost(ctx, pause/2)
}

// Close shuts down both pumps and the underlying socket.
func (t *TCPTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.in.Close()
		t.out.Close()
		err = t.conn.Close()
		t.pumpsWG.Wait()
	})
	return err
}
