// File: integration/ws_test.go
// Author: momentics <momentics@gmail.com>
//
// End-to-end scenario 3 (spec §8): WebSocket text echo, plus an interop
// check against github.com/gorilla/websocket as an independent RFC 6455
// implementation (spec §1.4 "gorilla/websocket ... for integration tests").
package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/client"
	"github.com/suleymanbyzt/StormSocket/server"
)

func newEchoWSServer(t *testing.T) *server.WSServer {
	t.Helper()
	cfg := server.DefaultConfig("127.0.0.1:0")
	srv := server.NewWSServer(cfg)
	srv.OnMessage = func(s api.Session, data []byte, isText bool) {
		ws := s.(interface {
			SendText([]byte) error
			SendBinary([]byte) error
		})
		if isText {
			_ = ws.SendText(data)
		} else {
			_ = ws.SendBinary(data)
		}
	}
	require.NoError(t, srv.Start())
	return srv
}

func TestScenario3_WebSocketTextEcho(t *testing.T) {
	srv := newEchoWSServer(t)
	defer srv.Shutdown()

	cfg := client.DefaultWSClientConfig("ws://" + srv.Addr().String() + "/")
	c := client.NewWSClient(cfg)

	recvCh := make(chan struct {
		text   string
		isText bool
	}, 1)
	c.OnMessage = func(_ api.Session, data []byte, isText bool) {
		recvCh <- struct {
			text   string
			isText bool
		}{string(data), isText}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	require.NoError(t, c.SendText([]byte("Hello WebSocket!")))

	select {
	case got := <-recvCh:
		assert.True(t, got.isText)
		assert.Equal(t, "Hello WebSocket!", got.text)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echo")
	}
}

// TestScenario3_GorillaInterop validates the server's upgrade/frame codec
// against an independent RFC 6455 client implementation.
func TestScenario3_GorillaInterop(t *testing.T) {
	srv := newEchoWSServer(t)
	defer srv.Shutdown()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr().String()+"/", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("Hello WebSocket!")))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, mt)
	assert.Equal(t, "Hello WebSocket!", string(data))
}
