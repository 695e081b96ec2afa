// File: middleware/middleware.go
// Author: momentics <momentics@gmail.com>
//
// Ordered middleware pipeline intercepting connect/disconnect/receive/send/
// error (spec §4.9). Grounded on the teacher's server/server.go middleware
// wrapping loop (`for i := len(settings.middleware) - 1; i >= 0; i--`) and
// server/options.go's WithMiddleware, generalized from the teacher's single
// decorator-style `func(Handler) Handler` into five distinct named hooks
// matching spec §4.9's forward/reverse/transform-or-drop semantics, which a
// plain decorator chain cannot express directly.
package middleware

import "github.com/suleymanbyzt/StormSocket/api"

// Middleware implements any subset of the pipeline hooks (spec §4.9).
// Embed Nop to implement only the hooks that matter; the rest default to
// pass-through no-ops.
type Middleware interface {
	OnConnected(s api.Session)
	OnDataReceived(s api.Session, data []byte) []byte
	OnDataSending(s api.Session, data []byte) []byte
	OnDisconnected(s api.Session)
	OnError(s api.Session, err error)
}

// Nop is a pass-through Middleware; embed it to implement only the hooks
// you need.
type Nop struct{}

func (Nop) OnConnected(api.Session)                               {}
func (Nop) OnDataReceived(s api.Session, data []byte) []byte      { return data }
func (Nop) OnDataSending(s api.Session, data []byte) []byte       { return data }
func (Nop) OnDisconnected(api.Session)                            {}
func (Nop) OnError(api.Session, error)                            {}

// Pipeline is an immutable, ordered list of Middleware, registered before
// the server/client starts (spec §4.9 "immutable after registration").
type Pipeline struct {
	chain []Middleware
}

// New constructs a Pipeline from mw in registration order.
func New(mw ...Middleware) *Pipeline {
	chain := make([]Middleware, len(mw))
	copy(chain, mw)
	return &Pipeline{chain: chain}
}

// Connected invokes OnConnected on every middleware, forward order.
func (p *Pipeline) Connected(s api.Session) {
	for _, m := range p.chain {
		m.OnConnected(s)
	}
}

// DataReceived invokes OnDataReceived forward; an empty result from any
// stage stops forwarding and drops the message (spec §4.9).
func (p *Pipeline) DataReceived(s api.Session, data []byte) []byte {
	for _, m := range p.chain {
		data = m.OnDataReceived(s, data)
		if len(data) == 0 {
			return nil
		}
	}
	return data
}

// DataSending invokes OnDataSending forward; an empty result drops the send.
func (p *Pipeline) DataSending(s api.Session, data []byte) []byte {
	for _, m := range p.chain {
		data = m.OnDataSending(s, data)
		if len(data) == 0 {
			return nil
		}
	}
	return data
}

// Disconnected invokes OnDisconnected in reverse order, mirroring stack
// unwinding (spec §4.9).
func (p *Pipeline) Disconnected(s api.Session) {
	for i := len(p.chain) - 1; i >= 0; i-- {
		p.chain[i].OnDisconnected(s)
	}
}

// Error invokes OnError on every middleware, forward order.
func (p *Pipeline) Error(s api.Session, err error) {
	for _, m := range p.chain {
		m.OnError(s, err)
	}
}
