// File: internal/framing/lengthprefix.go
// Author: momentics <momentics@gmail.com>
//
// LengthPrefixFramer implements the 4-byte big-endian length header framing
// discipline (spec §4.2/§6): [u32 big-endian length][payload], max 16 MiB,
// negative/oversize lengths are invalid-data errors. Header encode/decode is
// grounded on the teacher's protocol/frame_codec.go use of encoding/binary
// big-endian headers, applied here to a TCP length prefix instead of an RFC
// 6455 frame header.
package framing

import (
	"encoding/binary"
	"io"

	"github.com/suleymanbyzt/StormSocket/api"
)

// MaxLengthPrefixPayload is the maximum payload size: 16 MiB (spec §4.2).
const MaxLengthPrefixPayload = 16 << 20

// LengthPrefixFramer implements the length-prefix discipline.
type LengthPrefixFramer struct{}

func NewLengthPrefixFramer() *LengthPrefixFramer { return &LengthPrefixFramer{} }

func (f *LengthPrefixFramer) TryReadMessage(buffer []byte) ([]byte, []byte, error) {
	if len(buffer) < 4 {
		return nil, buffer, nil
	}
	length := int32(binary.BigEndian.Uint32(buffer[:4]))
	if length < 0 || length > MaxLengthPrefixPayload {
		return nil, buffer, api.NewError(api.ErrCodeInvalidArgument, "length-prefix frame exceeds maximum allowed size or is negative").
			WithContext("length", length)
	}
	total := 4 + int(length)
	if len(buffer) < total {
		return nil, buffer, nil
	}
	msg := make([]byte, length)
	copy(msg, buffer[4:total])
	return msg, buffer[total:], nil
}

func (f *LengthPrefixFramer) WriteFrame(message []byte, w io.Writer) error {
	if len(message) > MaxLengthPrefixPayload {
		return api.NewError(api.ErrCodeInvalidArgument, "length-prefix message exceeds maximum allowed size")
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(message)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(message)
	return err
}
