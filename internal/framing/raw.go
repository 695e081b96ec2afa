// File: internal/framing/raw.go
// Author: momentics <momentics@gmail.com>
//
// RawFramer treats every currently-available chunk of bytes as one complete
// message, leaving boundary detection to the application (spec §4.2 "Raw").
package framing

import "io"

// RawFramer is the no-op framing discipline.
type RawFramer struct{}

func NewRawFramer() *RawFramer { return &RawFramer{} }

func (f *RawFramer) TryReadMessage(buffer []byte) ([]byte, []byte, error) {
	if len(buffer) == 0 {
		return nil, buffer, nil
	}
	msg := make([]byte, len(buffer))
	copy(msg, buffer)
	return msg, buffer[len(buffer):], nil
}

func (f *RawFramer) WriteFrame(message []byte, w io.Writer) error {
	_, err := w.Write(message)
	return err
}
