// File: integration/rawclient_test.go
// Author: momentics <momentics@gmail.com>
//
// rawUpgrade performs a bare-bones RFC 6455 client handshake over a raw
// net.Conn, standing in for "a raw TCP client that completes upgrade" in
// spec §8 scenarios 5/6 (no internal/wsproto or client package helper, since
// those scenarios specifically exercise what the server does when the peer
// never answers pings or never drains its socket).
package integration_test

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// rawUpgrade0 opens a bare TCP connection and sends nothing, standing in for
// "Client opens TCP and sends nothing" in spec §8 scenario 7.
func rawUpgrade0(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	return conn
}

func rawUpgrade(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)

	nonce := make([]byte, 16)
	_, err = rand.Read(nonce)
	require.NoError(t, err)
	key := base64.StdEncoding.EncodeToString(nonce)

	req := fmt.Sprintf(
		"GET / HTTP/1.1\r\nHost: %s\r\nUpgrade: websocket\r\nConnection: Upgrade\r\nSec-WebSocket-Key: %s\r\nSec-WebSocket-Version: 13\r\n\r\n",
		addr, key,
	)
	_, err = conn.Write([]byte(req))
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	_ = conn.SetReadDeadline(time.Time{})

	return conn
}
