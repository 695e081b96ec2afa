// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations for StormSocket.
package api

import (
	"sync/atomic"
	"time"
)

// SessionState enumerates the lifecycle state of a session (spec §3).
// Transitions are monotonic: Connecting -> Connected -> Closing -> Closed.
type SessionState int32

const (
	StateConnecting SessionState = iota
	StateConnected
	StateClosing
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SlowConsumerPolicy selects backpressure behavior when a session's
// outbound buffer cannot keep up with send volume (spec §4.7).
type SlowConsumerPolicy int

const (
	// PolicyWait awaits the flush; is_backpressured may briefly be true.
	PolicyWait SlowConsumerPolicy = iota
	// PolicyDrop silently drops the outbound message if backpressured.
	PolicyDrop
	// PolicyDisconnect aborts the session if backpressured.
	PolicyDisconnect
)

func (p SlowConsumerPolicy) String() string {
	switch p {
	case PolicyWait:
		return "wait"
	case PolicyDrop:
		return "drop"
	case PolicyDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Metrics holds a session's atomic byte counters and connect time (spec §3).
// All counter fields are updated exclusively through atomic operations and
// must be accessed through the helper methods below, never directly.
type Metrics struct {
	bytesSent     uint64
	bytesReceived uint64
	connectedAt   time.Time
}

// NewMetrics starts a Metrics snapshot with connectedAt set to now.
func NewMetrics(now time.Time) *Metrics {
	return &Metrics{connectedAt: now}
}

// AddBytesSent atomically increments bytes_sent. Per spec §3 and the Open
// Question resolution in DESIGN.md, this must only be called after a flush
// has returned success for that quantity.
func (m *Metrics) AddBytesSent(n uint64) {
	atomic.AddUint64(&m.bytesSent, n)
}

// AddBytesReceived atomically increments bytes_received.
func (m *Metrics) AddBytesReceived(n uint64) {
	atomic.AddUint64(&m.bytesReceived, n)
}

// BytesSent returns the current bytes_sent counter.
func (m *Metrics) BytesSent() uint64 { return atomic.LoadUint64(&m.bytesSent) }

// BytesReceived returns the current bytes_received counter.
func (m *Metrics) BytesReceived() uint64 { return atomic.LoadUint64(&m.bytesReceived) }

// ConnectedAt returns the UTC instant the session was created.
func (m *Metrics) ConnectedAt() time.Time { return m.connectedAt }

// Uptime returns time elapsed since ConnectedAt.
func (m *Metrics) Uptime() time.Duration { return time.Since(m.connectedAt) }

// Snapshot is an immutable point-in-time copy of Metrics, safe to hand to
// callers outside the session's internal locking.
type Snapshot struct {
	BytesSent     uint64
	BytesReceived uint64
	ConnectedAt   time.Time
	Uptime        time.Duration
}

// Snapshot takes an immutable copy of the current metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		BytesSent:     m.BytesSent(),
		BytesReceived: m.BytesReceived(),
		ConnectedAt:   m.connectedAt,
		Uptime:        m.Uptime(),
	}
}
