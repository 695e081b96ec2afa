// File: internal/framing/framer.go
// Author: momentics <momentics@gmail.com>
//
// Framer splits an inbound TCP byte stream into discrete messages and
// serializes outbound messages (spec §4.2). Grounded on the teacher's
// protocol.WSConnection.RecvZeroCopy consume-then-advance pattern,
// generalized away from WebSocket frames to the three TCP framing
// disciplines spec §4.2/§6 call for.
package framing

import "io"

// Framer is a pluggable message-boundary strategy over a raw byte stream.
type Framer interface {
	// TryReadMessage consumes some prefix of buffer and returns either a
	// complete message and the remaining unconsumed bytes, or (nil, buffer,
	// nil) to signal "need more bytes" (buffer is returned unchanged).
	TryReadMessage(buffer []byte) (message []byte, rest []byte, err error)

	// WriteFrame appends the wire representation of message to w.
	WriteFrame(message []byte, w io.Writer) error
}
