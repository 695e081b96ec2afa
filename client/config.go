// File: client/config.go
// Author: momentics <momentics@gmail.com>
//
// Client configuration surface (spec §6 "Client options"). Grounded on the
// teacher's client/client.go ClientConfig struct and its ClientOption
// functional-options pattern, generalized from NUMA/batch tuning knobs to
// the connect_timeout/framer/socket_tuning/reconnect knobs spec §6 names.
package client

import (
	"time"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/internal/framing"
	"github.com/suleymanbyzt/StormSocket/internal/transport"
	"github.com/suleymanbyzt/StormSocket/server"
)

// ReconnectConfig mirrors spec §6 "reconnect".
type ReconnectConfig struct {
	Enabled     bool
	Delay       time.Duration
	MaxAttempts int
}

// DefaultReconnectConfig matches spec §6 defaults (enabled=false, delay=2s,
// max_attempts=0).
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{Enabled: false, Delay: 2 * time.Second, MaxAttempts: 0}
}

// TCPClientConfig mirrors spec §6 "Client options — TCP".
type TCPClientConfig struct {
	Endpoint       string
	ConnectTimeout time.Duration
	TLS            *transport.ClientTLSConfig
	Framer         func() framing.Framer
	SocketTuning   server.SocketTuning
	Reconnect      ReconnectConfig
	Logger         api.Logger
}

// DefaultTCPClientConfig matches spec §6 TCP client defaults.
func DefaultTCPClientConfig(endpoint string) *TCPClientConfig {
	return &TCPClientConfig{
		Endpoint:       endpoint,
		ConnectTimeout: 10 * time.Second,
		Framer:         func() framing.Framer { return framing.NewRawFramer() },
		SocketTuning:   server.DefaultSocketTuning(),
		Reconnect:      DefaultReconnectConfig(),
		Logger:         api.NopLogger{},
	}
}

// WSClientConfig mirrors spec §6 "Client options — WebSocket".
type WSClientConfig struct {
	URI            string
	ConnectTimeout time.Duration
	MaxFrameSize   int
	ExtraHeaders   map[string][]string
	TLS            *transport.ClientTLSConfig
	SocketTuning   server.SocketTuning
	Heartbeat      server.HeartbeatConfig
	Reconnect      ReconnectConfig
	Logger         api.Logger
}

// DefaultWSClientConfig matches spec §6 WebSocket client defaults.
func DefaultWSClientConfig(uri string) *WSClientConfig {
	return &WSClientConfig{
		URI:            uri,
		ConnectTimeout: 10 * time.Second,
		MaxFrameSize:   1 << 20,
		SocketTuning:   server.DefaultSocketTuning(),
		Heartbeat:      server.DefaultHeartbeatConfig(),
		Reconnect:      DefaultReconnectConfig(),
		Logger:         api.NopLogger{},
	}
}
