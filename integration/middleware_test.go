// File: integration/middleware_test.go
// Author: momentics <momentics@gmail.com>
//
// End-to-end coverage for the server's on_data_sending middleware hook
// (spec §4.9): a registered middleware must see and be able to transform
// every outbound Session.Send/SendText payload, not just inbound data.
package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/client"
	"github.com/suleymanbyzt/StormSocket/middleware"
	"github.com/suleymanbyzt/StormSocket/server"
)

type upperCaseSend struct{ middleware.Nop }

func (upperCaseSend) OnDataSending(_ api.Session, data []byte) []byte {
	out := make([]byte, len(data))
	for i, c := range data {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

func TestMiddleware_OnDataSendingTransformsOutboundTCP(t *testing.T) {
	cfg := server.DefaultConfig("127.0.0.1:0")
	srv := server.NewTCPServer(cfg)
	srv.Use(upperCaseSend{})
	srv.OnDataReceived = func(s api.Session, data []byte) {
		_ = s.Send(data)
	}
	require.NoError(t, srv.Start())
	defer srv.Shutdown()

	ccfg := client.DefaultTCPClientConfig(srv.Addr().String())
	c := client.NewTCPClient(ccfg)

	recvCh := make(chan []byte, 1)
	c.OnDataReceived = func(_ api.Session, data []byte) {
		recvCh <- append([]byte(nil), data...)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	require.NoError(t, c.Send([]byte("hello")))

	select {
	case got := <-recvCh:
		assert.Equal(t, "HELLO", string(got))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for transformed echo")
	}
}

type droppingSend struct{ middleware.Nop }

func (droppingSend) OnDataSending(_ api.Session, _ []byte) []byte { return nil }

func TestMiddleware_OnDataSendingDropSuppressesSend(t *testing.T) {
	cfg := server.DefaultConfig("127.0.0.1:0")
	srv := server.NewTCPServer(cfg)
	srv.Use(droppingSend{})
	received := make(chan struct{}, 1)
	srv.OnDataReceived = func(s api.Session, data []byte) {
		_ = s.Send(data)
		select {
		case received <- struct{}{}:
		default:
		}
	}
	require.NoError(t, srv.Start())
	defer srv.Shutdown()

	ccfg := client.DefaultTCPClientConfig(srv.Addr().String())
	c := client.NewTCPClient(ccfg)

	recvCh := make(chan []byte, 1)
	c.OnDataReceived = func(_ api.Session, data []byte) {
		recvCh <- append([]byte(nil), data...)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	require.NoError(t, c.Send([]byte("hello")))

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the message")
	}

	select {
	case <-recvCh:
		t.Fatal("client received a send the middleware should have dropped")
	case <-time.After(300 * time.Millisecond):
	}
}
