// File: integration/tcp_test.go
// Author: momentics <momentics@gmail.com>
//
// End-to-end scenarios 1-2 (spec §8 "End-to-end scenarios"): raw TCP echo,
// length-prefix echo.
package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/client"
	"github.com/suleymanbyzt/StormSocket/internal/framing"
	"github.com/suleymanbyzt/StormSocket/server"
)

func TestScenario1_TCPEcho(t *testing.T) {
	cfg := server.DefaultConfig("127.0.0.1:0")
	srv := server.NewTCPServer(cfg)
	srv.OnDataReceived = func(s api.Session, data []byte) {
		_ = s.Send(data)
	}
	require.NoError(t, srv.Start())
	defer srv.Shutdown()

	ccfg := client.DefaultTCPClientConfig(srv.Addr().String())
	c := client.NewTCPClient(ccfg)

	recvCh := make(chan []byte, 1)
	c.OnDataReceived = func(_ api.Session, data []byte) {
		cp := append([]byte(nil), data...)
		recvCh <- cp
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	require.NoError(t, c.Send([]byte("Hello StormSocket")))

	select {
	case got := <-recvCh:
		assert.Equal(t, "Hello StormSocket", string(got))
		assert.Len(t, got, 17)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echo")
	}
}

func TestScenario2_LengthPrefixEcho(t *testing.T) {
	cfg := server.DefaultConfig("127.0.0.1:0")
	cfg.Framer = func() framing.Framer { return framing.NewLengthPrefixFramer() }
	srv := server.NewTCPServer(cfg)
	srv.OnDataReceived = func(s api.Session, data []byte) {
		_ = s.Send(data)
	}
	require.NoError(t, srv.Start())
	defer srv.Shutdown()

	ccfg := client.DefaultTCPClientConfig(srv.Addr().String())
	ccfg.Framer = func() framing.Framer { return framing.NewLengthPrefixFramer() }
	c := client.NewTCPClient(ccfg)

	recvCh := make(chan []byte, 1)
	c.OnDataReceived = func(_ api.Session, data []byte) {
		cp := append([]byte(nil), data...)
		recvCh <- cp
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	require.NoError(t, c.Send([]byte("Framed message!")))

	select {
	case got := <-recvCh:
		assert.Equal(t, "Framed message!", string(got))
		assert.Len(t, got, 15)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echo")
	}
}
