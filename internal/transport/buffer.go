// File: internal/transport/buffer.go
// Author: momentics <momentics@gmail.com>
//
// Bounded in-memory buffers with pause/resume hysteresis (spec §4.1).
//
// Two flavors back a Transport's two directions:
//   - outboundQueue: a queue of whole byte-slice chunks. The write pump
//     always drains every chunk at once, so no chunk is ever split and a
//     simple FIFO queue (github.com/eapache/queue, the teacher's own
//     dependency) is a perfect fit.
//   - inboundBuffer: a byte-addressable buffer, because Transport.Read must
//     support arbitrary-sized partial reads into a caller-supplied slice;
//     bytes.Buffer already solves partial-consume-from-front correctly.
//
// Both share the same wait/signal gate for pause/resume blocking.
package transport

import (
	"bytes"
	"context"
	"sync"

	"github.com/eapache/queue"

	"github.com/suleymanbyzt/StormSocket/api"
)

// gate is the shared mutex + broadcast-on-change primitive used by both
// buffer flavors to implement blocking waits with context cancellation.
type gate struct {
	mu       sync.Mutex
	notifyCh chan struct{}
	closed   bool
}

func newGate() *gate {
	return &gate{notifyCh: make(chan struct{})}
}

// signalLocked wakes every current waiter. Must hold mu.
func (g *gate) signalLocked() {
	close(g.notifyCh)
	g.notifyCh = make(chan struct{})
}

// waitUntilLocked blocks until pred() holds, the gate closes, or ctx is
// done. Must be called with mu held; releases/reacquires mu across waits.
func (g *gate) waitUntilLocked(ctx context.Context, pred func() bool) error {
	for !pred() && !g.closed {
		ch := g.notifyCh
		g.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			g.mu.Lock()
			return ctx.Err()
		}
		g.mu.Lock()
	}
	if g.closed && !pred() {
		return api.ErrTransportClosed
	}
	return nil
}

func (g *gate) close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	g.signalLocked()
}

// outboundQueue holds whole pending write chunks awaiting flush to the
// socket.
type outboundQueue struct {
	gate
	chunks *queue.Queue
	size   int
	max    int
}

func newOutboundQueue(max int) *outboundQueue {
	return &outboundQueue{gate: *newGate(), chunks: queue.New(), max: max}
}

// push enqueues data (copied) for later draining.
func (q *outboundQueue) push(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return api.ErrTransportClosed
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	q.chunks.Add(cp)
	q.size += len(cp)
	q.signalLocked()
	return nil
}

func (q *outboundQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// waitAtMost blocks until the queued byte count drops to n or below.
func (q *outboundQueue) waitAtMost(ctx context.Context, n int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.waitUntilLocked(ctx, func() bool { return q.size <= n })
}

// drainAll blocks until at least one chunk is queued, then removes and
// concatenates every queued chunk.
func (q *outboundQueue) drainAll(ctx context.Context) ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.waitUntilLocked(ctx, func() bool { return q.size > 0 }); err != nil {
		return nil, err
	}
	out := make([]byte, 0, q.size)
	for q.chunks.Length() > 0 {
		out = append(out, q.chunks.Remove().([]byte)...)
	}
	q.size = 0
	q.signalLocked()
	return out, nil
}

func (q *outboundQueue) Close() { q.close() }

// inboundBuffer accumulates raw socket bytes for the framer loop to consume
// at arbitrary granularity.
type inboundBuffer struct {
	gate
	buf bytes.Buffer
	max int
}

func newInboundBuffer(max int) *inboundBuffer {
	return &inboundBuffer{gate: *newGate(), max: max}
}

// push appends data produced by the socket-read loop.
func (b *inboundBuffer) push(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return api.ErrTransportClosed
	}
	b.buf.Write(data)
	b.signalLocked()
	return nil
}

func (b *inboundBuffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

// waitAtLeast blocks until the buffered byte count reaches n. The read pump
// does not call it; it checks Size and waits with waitAtMost instead.
func (b *inboundBuffer) waitAtLeast(ctx context.Context, n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.waitUntilLocked(ctx, func() bool { return b.buf.Len() >= n })
}

// waitAtMost blocks until the buffered byte count drops to n or below (the
// resume threshold), or the buffer closes.
func (b *inboundBuffer) waitAtMost(ctx context.Context, n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.waitUntilLocked(ctx, func() bool { return b.buf.Len() <= n })
}

// readUpTo blocks until at least one byte is available (or closed), then
// copies up to len(p) bytes out of the buffer.
func (b *inboundBuffer) readUpTo(ctx context.Context, p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.waitUntilLocked(ctx, func() bool { return b.buf.Len() > 0 }); err != nil {
		return 0, err
	}
	n, _ := b.buf.Read(p)
	b.signalLocked()
	return n, nil
}

func (b *inboundBuffer) Close() { b.close() }
