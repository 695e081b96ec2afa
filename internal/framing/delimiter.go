// File: internal/framing/delimiter.go
// Author: momentics <momentics@gmail.com>
//
// DelimiterFramer splits on a configurable single byte, default newline
// (spec §4.2/§6): the delimiter is stripped on read and appended on write.
package framing

import (
	"bytes"
	"io"
)

// DefaultDelimiter is the default framing delimiter, newline.
const DefaultDelimiter = '\n'

// DelimiterFramer implements the delimiter-based discipline.
type DelimiterFramer struct {
	Delimiter byte
}

// NewDelimiterFramer constructs a framer using the default delimiter.
func NewDelimiterFramer() *DelimiterFramer {
	return &DelimiterFramer{Delimiter: DefaultDelimiter}
}

// NewDelimiterFramerWithByte constructs a framer using a custom delimiter.
func NewDelimiterFramerWithByte(delim byte) *DelimiterFramer {
	return &DelimiterFramer{Delimiter: delim}
}

func (f *DelimiterFramer) TryReadMessage(buffer []byte) ([]byte, []byte, error) {
	idx := bytes.IndexByte(buffer, f.Delimiter)
	if idx < 0 {
		return nil, buffer, nil
	}
	msg := make([]byte, idx)
	copy(msg, buffer[:idx])
	return msg, buffer[idx+1:], nil
}

func (f *DelimiterFramer) WriteFrame(message []byte, w io.Writer) error {
	if _, err := w.Write(message); err != nil {
		return err
	}
	_, err := w.Write([]byte{f.Delimiter})
	return err
}
