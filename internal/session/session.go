// File: internal/session/session.go
// Author: momentics <momentics@gmail.com>
//
// Base session implementation shared by TCP and WebSocket sessions: identity,
// state machine, metrics, write-lock serialization, slow-consumer policy,
// group membership, and close/abort single-shot semantics (spec §3, §4.7,
// §5). Grounded on the teacher's internal/session/session.go id/done/cancel
// shape, generalized from a bare cancelable session to the richer contract
// spec §3 requires (metrics, groups, policy, write lock) — none of which the
// teacher's sessionImpl carries.
package session

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/suleymanbyzt/StormSocket/api"
)

// rawWriter is the transport-specific write primitive a concrete session
// plugs into base: frame the payload (if needed) and push it through the
// transport, blocking until flush completes or fails.
type rawWriter func(ctx context.Context, data []byte) error

// closer performs the transport-specific graceful shutdown sequence (emit a
// close frame where applicable, then close the transport).
type closer func() error

// aborter performs the transport-specific immediate teardown (no frame).
type aborter func()

// base implements the identity/metrics/policy/groups/write-lock machinery
// common to every session kind; TCPSession and WSSession embed it and supply
// rawWriter/closer/aborter.
type base struct {
	id         uint64
	remoteAddr net.Addr
	metrics    *api.Metrics
	policy     api.SlowConsumerPolicy

	state int32 // api.SessionState, atomic

	writeMu         sync.Mutex
	isBackpressured int32 // atomic bool

	closeGuard int32 // atomic bool, CAS'd exactly once

	groupsMu sync.Mutex
	groups   map[string]struct{}

	write      rawWriter
	doClose    closer
	doAbort    aborter
	sendFilter func(data []byte) []byte
}

// SetSendFilter registers a hook run on every Send/SendText/SendBinary
// payload before it reaches the write lock, letting a caller wire in
// middleware's on_data_sending stage (spec §4.9). A nil or empty-slice
// result drops the send without writing anything. Must be set before the
// session starts handling sends.
func (b *base) SetSendFilter(fn func(data []byte) []byte) {
	b.sendFilter = fn
}

func newBase(remoteAddr net.Addr, policy api.SlowConsumerPolicy) *base {
	return &base{
		id:         NextID(),
		remoteAddr: remoteAddr,
		metrics:    api.NewMetrics(time.Now()),
		policy:     policy,
		state:      int32(api.StateConnecting),
		groups:     make(map[string]struct{}),
	}
}

func (b *base) ID() uint64             { return b.id }
func (b *base) RemoteAddr() net.Addr   { return b.remoteAddr }
func (b *base) State() api.SessionState { return api.SessionState(atomic.LoadInt32(&b.state)) }
func (b *base) setState(s api.SessionState) { atomic.StoreInt32(&b.state, int32(s)) }

func (b *base) Metrics() api.Snapshot { return b.metrics.Snapshot() }
func (b *base) Policy() api.SlowConsumerPolicy { return b.policy }

// AddBytesReceived records inbound bytes; called from the session's read
// loop once a complete message has been delivered.
func (b *base) AddBytesReceived(n uint64) { b.metrics.AddBytesReceived(n) }

func (b *base) IsBackpressured() bool {
	return atomic.LoadInt32(&b.isBackpressured) == 1
}

func (b *base) setBackpressured(v bool) {
	if v {
		atomic.StoreInt32(&b.isBackpressured, 1)
	} else {
		atomic.StoreInt32(&b.isBackpressured, 0)
	}
}

func (b *base) Groups() []string {
	b.groupsMu.Lock()
	defer b.groupsMu.Unlock()
	out := make([]string, 0, len(b.groups))
	for g := range b.groups {
		out = append(out, g)
	}
	return out
}

func (b *base) JoinGroup(name string) {
	b.groupsMu.Lock()
	b.groups[name] = struct{}{}
	b.groupsMu.Unlock()
}

func (b *base) LeaveGroup(name string) {
	b.groupsMu.Lock()
	delete(b.groups, name)
	b.groupsMu.Unlock()
}

// groupSnapshot returns the same snapshot as Groups. Groups.RemoveFromAll
// iterates s.Groups() directly and does not call it.
func (b *base) groupSnapshot() []string { return b.Groups() }

// send applies the slow-consumer policy (spec §4.7) then, if the send should
// proceed, serializes through the write lock and calls w. Accepting the
// writer as a parameter (rather than a shared field) lets callers vary the
// framing per call (e.g. WebSocket Text vs Binary) without a data race.
func (b *base) send(ctx context.Context, data []byte, w rawWriter) error {
	if atomic.LoadInt32(&b.closeGuard) == 1 {
		return api.ErrTransportClosed
	}

	if b.sendFilter != nil {
		data = b.sendFilter(data)
		if len(data) == 0 {
			return nil
		}
	}

	switch b.policy {
	case api.PolicyDrop:
		if b.IsBackpressured() {
			return nil
		}
	case api.PolicyDisconnect:
		if b.IsBackpressured() {
			b.Abort()
			return nil
		}
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if atomic.LoadInt32(&b.closeGuard) == 1 {
		return api.ErrTransportClosed
	}

	b.setBackpressured(true)
	err := w(ctx, data)
	b.setBackpressured(false)
	if err != nil {
		return err
	}
	b.metrics.AddBytesSent(uint64(len(data)))
	return nil
}

// compareAndSwapCloseGuard atomically sets close_guard, returning true only
// to the single caller that wins the race (spec §3 "close_guard").
func (b *base) compareAndSwapCloseGuard() bool {
	return atomic.CompareAndSwapInt32(&b.closeGuard, 0, 1)
}

// Close performs a graceful, single-shot shutdown (spec §4.7 "close()").
func (b *base) Close() error {
	if !atomic.CompareAndSwapInt32(&b.closeGuard, 0, 1) {
		return nil
	}
	b.setState(api.StateClosing)
	b.writeMu.Lock()
	err := b.doClose()
	b.writeMu.Unlock()
	b.setState(api.StateClosed)
	return err
}

// Abort performs a single-shot immediate teardown, no frame written
// (spec §4.7 "abort()").
func (b *base) Abort() {
	if !atomic.CompareAndSwapInt32(&b.closeGuard, 0, 1) {
		return
	}
	b.setState(api.StateClosing)
	b.doAbort()
	b.setState(api.StateClosed)
}
