// File: integration/heartbeat_test.go
// Author: momentics <momentics@gmail.com>
//
// End-to-end scenarios 4-7 (spec §8): heartbeat keep-alive, dead-connection
// disconnect, slow-consumer Drop, handshake timeout.
package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/client"
	"github.com/suleymanbyzt/StormSocket/server"
)

func TestScenario4_HeartbeatKeepsAlive(t *testing.T) {
	cfg := server.DefaultConfig("127.0.0.1:0")
	cfg.WebSocket.Heartbeat.PingInterval = 200 * time.Millisecond
	cfg.WebSocket.Heartbeat.MaxMissedPongs = 3
	srv := server.NewWSServer(cfg)
	require.NoError(t, srv.Start())
	defer srv.Shutdown()

	ccfg := client.DefaultWSClientConfig("ws://" + srv.Addr().String() + "/")
	c := client.NewWSClient(ccfg)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	time.Sleep(800 * time.Millisecond)

	assert.Equal(t, 1, srv.Sessions().Count())
}

func TestScenario5_DeadConnectionDisconnects(t *testing.T) {
	cfg := server.DefaultConfig("127.0.0.1:0")
	cfg.WebSocket.Heartbeat.PingInterval = 100 * time.Millisecond
	cfg.WebSocket.Heartbeat.MaxMissedPongs = 2
	srv := server.NewWSServer(cfg)

	disconnected := make(chan struct{}, 1)
	srv.OnDisconnected = func(api.Session) {
		select {
		case disconnected <- struct{}{}:
		default:
		}
	}
	require.NoError(t, srv.Start())
	defer srv.Shutdown()

	conn := rawUpgrade(t, srv.Addr().String())
	defer conn.Close()

	select {
	case <-disconnected:
	case <-time.After(5 * time.Second):
		t.Fatal("server never disconnected the dead session")
	}
	assert.Equal(t, 0, srv.Sessions().Count())
}

func TestScenario6_SlowConsumerDrop(t *testing.T) {
	cfg := server.DefaultConfig("127.0.0.1:0")
	cfg.MaxPendingSendBytes = 1024
	cfg.SlowConsumerPolicy = api.PolicyDrop
	srv := server.NewWSServer(cfg)

	var sess api.Session
	connected := make(chan struct{})
	srv.OnConnected = func(s api.Session) {
		sess = s
		close(connected)
	}
	require.NoError(t, srv.Start())
	defer srv.Shutdown()

	conn := rawUpgrade(t, srv.Addr().String())
	defer conn.Close()

	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("server never fired on_connected")
	}

	chunk := make([]byte, 4096)
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				_ = sess.Send(chunk)
			}
		}
	}()
	defer close(stop)

	require.Eventually(t, func() bool {
		return sess.IsBackpressured()
	}, 3*time.Second, 10*time.Millisecond)

	assert.Equal(t, api.StateConnected, sess.State())

	before := sess.Metrics().BytesSent
	time.Sleep(200 * time.Millisecond)
	after := sess.Metrics().BytesSent
	assert.Equal(t, before, after)
}

func TestScenario7_HandshakeTimeout(t *testing.T) {
	cfg := server.DefaultConfig("127.0.0.1:0")
	cfg.WebSocket.HandshakeTimeout = 500 * time.Millisecond
	srv := server.NewWSServer(cfg)

	connected := make(chan struct{}, 1)
	srv.OnConnected = func(api.Session) {
		select {
		case connected <- struct{}{}:
		default:
		}
	}
	require.NoError(t, srv.Start())
	defer srv.Shutdown()

	conn := rawUpgrade0(t, srv.Addr().String())
	defer conn.Close()

	buf := make([]byte, 1)
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	n, err := conn.Read(buf)

	assert.Equal(t, 0, n)
	assert.Error(t, err)

	select {
	case <-connected:
		t.Fatal("on_connected fired despite handshake timeout")
	default:
	}
}
