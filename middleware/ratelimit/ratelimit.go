// File: middleware/ratelimit/ratelimit.go
// Author: momentics <momentics@gmail.com>
//
// Reference rate-limit middleware: external to the core per spec §1
// ("rate-limit middleware, specified only at interface level"). Provided as
// a concrete middleware.Middleware so the pipeline has at least one
// non-trivial example to wire against. Grounded on golang.org/x/time/rate's
// token-bucket Limiter, the same dependency used for connection throttling
// in yanzongzhen-nats-server's go.mod.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/middleware"
)

// PerSession rate-limits inbound messages per session using a token-bucket
// limiter keyed by session id. Sessions exceeding the limit have their
// inbound data dropped (the pipeline's "empty result drops the message").
type PerSession struct {
	middleware.Nop

	rps   rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[uint64]*rate.Limiter
}

// New constructs a PerSession rate limiter allowing rps messages per second
// per session, with burst capacity burst.
func New(rps float64, burst int) *PerSession {
	return &PerSession{
		rps:      rate.Limit(rps),
		burst:    burst,
		limiters: make(map[uint64]*rate.Limiter),
	}
}

func (p *PerSession) limiterFor(id uint64) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.limiters[id]
	if !ok {
		l = rate.NewLimiter(p.rps, p.burst)
		p.limiters[id] = l
	}
	return l
}

// OnDataReceived drops data when the session has exceeded its rate.
func (p *PerSession) OnDataReceived(s api.Session, data []byte) []byte {
	if !p.limiterFor(s.ID()).Allow() {
		return nil
	}
	return data
}

// OnDisconnected releases the session's limiter.
func (p *PerSession) OnDisconnected(s api.Session) {
	p.mu.Lock()
	delete(p.limiters, s.ID())
	p.mu.Unlock()
}
