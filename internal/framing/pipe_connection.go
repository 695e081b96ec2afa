// File: internal/framing/pipe_connection.go
// Author: momentics <momentics@gmail.com>
//
// PipeConnection drives a TCP session's inbound loop: reads from the
// transport, repeatedly asks the framer for complete messages, and
// dispatches each to a callback (spec §4.3). Grounded on the teacher's
// protocol/connection.go recvLoop/sendLoop pair, generalized from raw
// WebSocket frame dispatch to the pluggable Framer contract.
package framing

import (
	"bytes"
	"context"
	"io"
	"sync/atomic"

	"github.com/suleymanbyzt/StormSocket/api"
)

// PipeConnection reads framed messages from a Transport and delivers them to
// onMessage; it also exposes Send, which writes through the framer and
// flushes, reporting backpressure via onBackpressure.
type PipeConnection struct {
	transport api.Transport
	framer    Framer

	onMessage          func(data []byte)
	onBackpressure     func()
	backpressureFired  int32
	writeBuf           bytes.Buffer
}

// NewPipeConnection constructs a PipeConnection over transport using framer,
// delivering decoded messages to onMessage.
func NewPipeConnection(transport api.Transport, framer Framer, onMessage func([]byte)) *PipeConnection {
	return &PipeConnection{transport: transport, framer: framer, onMessage: onMessage}
}

// SetOnBackpressureDetected registers a hook fired once, the first time a
// flush is observed to suspend (spec §4.3).
func (p *PipeConnection) SetOnBackpressureDetected(fn func()) {
	p.onBackpressure = fn
}

// Run drives the inbound loop until ctx is done or the transport reaches
// EOF. It never returns an error for expected termination; unexpected
// framing errors are returned to the caller (which should treat them as
// protocol errors per spec §7).
func (p *PipeConnection) Run(ctx context.Context) error {
	buf := make([]byte, 0, 64*1024)
	chunk := make([]byte, 32*1024)
	for {
		n, err := p.transport.Read(ctx, chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			for {
				msg, rest, ferr := p.framer.TryReadMessage(buf)
				if ferr != nil {
					return ferr
				}
				if msg == nil {
					buf = append(buf[:0], rest...)
					break
				}
				buf = append(buf[:0], rest...)
				if p.onMessage != nil {
					p.onMessage(msg)
				}
			}
		}
		if err != nil {
			if err == io.EOF || ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Send writes data through the framer then flushes, reporting backpressure
// on first observation (spec §4.3). This does not itself apply the
// slow-consumer policy; callers (session write path) decide whether to
// proceed based on IsBackpressured/Policy before calling Send.
func (p *PipeConnection) Send(ctx context.Context, data []byte) error {
	p.writeBuf.Reset()
	if err := p.framer.WriteFrame(data, &p.writeBuf); err != nil {
		return err
	}
	if _, err := p.transport.Write(ctx, p.writeBuf.Bytes()); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- p.transport.Flush(ctx) }()
	select {
	case err := <-done:
		return err
	default:
	}
	if atomic.CompareAndSwapInt32(&p.backpressureFired, 0, 1) {
		if p.onBackpressure != nil {
			p.onBackpressure()
		}
	}
	return <-done
}
