package client_test

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/client"
)

// echoListener accepts one connection and echoes every byte read back to
// the writer, until the connection closes.
func echoListener(t *testing.T) (addr string, stop func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		buf := make([]byte, 4096)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				_, _ = conn.Write(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()

	return ln.Addr().String(), func() { _ = ln.Close() }
}

func TestTCPClient_ConnectSendReceiveEcho(t *testing.T) {
	addr, stop := echoListener(t)
	defer stop()

	cfg := client.DefaultTCPClientConfig(addr)
	cfg.ConnectTimeout = 2 * time.Second
	c := client.NewTCPClient(cfg)

	recvCh := make(chan []byte, 1)
	c.OnDataReceived = func(_ api.Session, data []byte) {
		cp := make([]byte, len(data))
		copy(cp, data)
		recvCh <- cp
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	require.NoError(t, c.Send([]byte("Hello StormSocket")))

	select {
	case got := <-recvCh:
		assert.True(t, bytes.Equal(got, []byte("Hello StormSocket")))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echo")
	}
}

func TestTCPClient_SendBeforeConnectFails(t *testing.T) {
	c := client.NewTCPClient(client.DefaultTCPClientConfig("127.0.0.1:0"))
	err := c.Send([]byte("x"))
	assert.Error(t, err)
}

func TestTCPClient_ConnectFailureWithoutReconnectReturnsError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := client.DefaultTCPClientConfig(addr)
	cfg.ConnectTimeout = 500 * time.Millisecond
	c := client.NewTCPClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, c.Connect(ctx))
}
