// File: internal/wsproto/heartbeat.go
// Author: momentics <momentics@gmail.com>
//
// Ping/pong heartbeat timer with missed-pong counting (spec §4.6). Grounded
// on the teacher's control-loop timer pattern (reactor/*): a single
// time.Ticker driving a periodic callback, generalized here to the simpler
// per-session heartbeat the spec calls for (no reactor affinity).
package wsproto

import (
	"sync/atomic"
	"time"
)

// Heartbeat drives a ping/pong liveness check on a fixed interval.
type Heartbeat struct {
	interval       time.Duration
	maxMissedPongs int32
	missedPongs    int32

	onPing    func()
	onTimeout func()

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHeartbeat constructs a Heartbeat. onPing is invoked on every tick to
// send a ping frame; onTimeout fires once when missed_pongs exceeds
// maxMissedPongs, after which the timer stops (spec §4.6).
func NewHeartbeat(interval time.Duration, maxMissedPongs int, onPing, onTimeout func()) *Heartbeat {
	return &Heartbeat{
		interval:       interval,
		maxMissedPongs: int32(maxMissedPongs),
		onPing:         onPing,
		onTimeout:      onTimeout,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start begins the periodic timer in its own goroutine.
func (h *Heartbeat) Start() {
	go h.run()
}

func (h *Heartbeat) run() {
	defer close(h.doneCh)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			missed := atomic.AddInt32(&h.missedPongs, 1)
			if missed > h.maxMissedPongs {
				// Run onTimeout on its own goroutine: it typically aborts the
				// session, which calls Stop, and Stop waits for this loop to exit.
				if h.onTimeout != nil {
					go h.onTimeout()
				}
				return
			}
			if h.onPing != nil {
				h.onPing()
			}
		}
	}
}

// OnPongReceived resets the missed-pong counter; call this whenever a pong
// frame arrives.
func (h *Heartbeat) OnPongReceived() {
	atomic.StoreInt32(&h.missedPongs, 0)
}

// MissedPongs returns the current missed-pong count.
func (h *Heartbeat) MissedPongs() int {
	return int(atomic.LoadInt32(&h.missedPongs))
}

// Stop halts the timer. Safe to call more than once.
func (h *Heartbeat) Stop() {
	select {
	case <-h.stopCh:
	default:
		close(h.stopCh)
	}
	<-h.doneCh
}
