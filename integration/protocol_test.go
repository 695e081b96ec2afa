// File: integration/protocol_test.go
// Author: momentics <momentics@gmail.com>
//
// End-to-end coverage for the WS frame codec's protocol-error close path and
// configurable max_frame_size (spec §4.4/§4.10/§7): a reserved-bit violation
// or oversize frame must produce a Close frame carrying the decoded status
// and fire middleware/error + OnError, rather than silently dropping the
// connection.
package integration_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/internal/wsproto"
	"github.com/suleymanbyzt/StormSocket/server"
)

func readCloseFrame(t *testing.T, conn interface {
	Read([]byte) (int, error)
}) (status uint16, n int) {
	t.Helper()
	buf := make([]byte, 128)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, 4)
	require.Equal(t, byte(0x80|byte(wsproto.OpcodeClose)), buf[0])
	status = uint16(buf[2])<<8 | uint16(buf[3])
	return status, n
}

func TestWSServer_ProtocolErrorClosesWithStatusAndFiresOnError(t *testing.T) {
	cfg := server.DefaultConfig("127.0.0.1:0")
	srv := server.NewWSServer(cfg)

	errCh := make(chan error, 1)
	srv.OnError = func(_ api.Session, err error) {
		select {
		case errCh <- err:
		default:
		}
	}
	require.NoError(t, srv.Start())
	defer srv.Shutdown()

	conn := rawUpgrade(t, srv.Addr().String())
	defer conn.Close()

	// FIN + RSV1 set + opcode Text, zero-length payload: a reserved-bit
	// violation (spec §4.4, close status 1002).
	_, err := conn.Write([]byte{0x80 | 0x40 | byte(wsproto.OpcodeText), 0x00})
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	status, _ := readCloseFrame(t, conn)
	assert.Equal(t, uint16(1002), status)

	select {
	case err := <-errCh:
		require.Error(t, err)
		var perr *wsproto.ProtocolError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 1002, perr.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("on_error never fired for the protocol violation")
	}
}

func TestWSServer_EnforcesConfiguredMaxFrameSize(t *testing.T) {
	cfg := server.DefaultConfig("127.0.0.1:0")
	cfg.WebSocket.MaxFrameSize = 16
	srv := server.NewWSServer(cfg)
	require.NoError(t, srv.Start())
	defer srv.Shutdown()

	conn := rawUpgrade(t, srv.Addr().String())
	defer conn.Close()

	frame, err := wsproto.EncodeFrame(wsproto.OpcodeBinary, make([]byte, 32), true)
	require.NoError(t, err)
	_, err = conn.Write(frame)
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	status, _ := readCloseFrame(t, conn)
	assert.Equal(t, uint16(1009), status)
}
