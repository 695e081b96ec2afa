// File: server/config.go
// Author: momentics <momentics@gmail.com>
//
// Server configuration surface (spec §6 "Server options"/"WebSocket
// options"). Grounded on the teacher's server/options.go functional-options
// pattern and server/types.go Config struct, generalized from NUMA/reactor
// tuning knobs to the framing/backpressure/heartbeat knobs spec §6 names.
package server

import (
	"time"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/internal/framing"
	"github.com/suleymanbyzt/StormSocket/internal/transport"
)

// SocketTuning mirrors spec §6 "socket_tuning".
type SocketTuning struct {
	NoDelay   bool
	KeepAlive bool
}

// DefaultSocketTuning matches spec §6 defaults (no_delay=false,
// keep_alive=true).
func DefaultSocketTuning() SocketTuning {
	return SocketTuning{NoDelay: false, KeepAlive: true}
}

// HeartbeatConfig mirrors spec §6 "heartbeat".
type HeartbeatConfig struct {
	PingInterval   time.Duration
	MaxMissedPongs int
	AutoPong       bool
}

// DefaultHeartbeatConfig matches spec §6 defaults.
func DefaultHeartbeatConfig() HeartbeatConfig {
	return HeartbeatConfig{PingInterval: 30 * time.Second, MaxMissedPongs: 3, AutoPong: true}
}

// WebSocketConfig mirrors spec §6 "WebSocket options".
type WebSocketConfig struct {
	Heartbeat        HeartbeatConfig
	MaxFrameSize     int
	AllowedOrigins   []string
	HandshakeTimeout time.Duration
}

// DefaultWebSocketConfig matches spec §6 defaults.
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		Heartbeat:        DefaultHeartbeatConfig(),
		MaxFrameSize:     1 << 20,
		HandshakeTimeout: 5 * time.Second,
	}
}

// Config mirrors spec §6 "Server options".
type Config struct {
	Endpoint               string
	Backlog                int
	DualMode               bool
	ReceiveBuffer          int
	SendBuffer             int
	MaxPendingReceiveBytes int
	MaxPendingSendBytes    int
	MaxConnections         int
	SlowConsumerPolicy     api.SlowConsumerPolicy
	TLS                    *transport.ServerTLSConfig
	Framer                 func() framing.Framer
	WebSocket              WebSocketConfig
	SocketTuning           SocketTuning
	Logger                 api.Logger
}

// DefaultConfig matches spec §6 server defaults.
func DefaultConfig(endpoint string) *Config {
	return &Config{
		Endpoint:               endpoint,
		Backlog:                128,
		DualMode:               false,
		ReceiveBuffer:          65536,
		SendBuffer:             65536,
		MaxPendingReceiveBytes: 1 << 20,
		MaxPendingSendBytes:    1 << 20,
		MaxConnections:         0,
		SlowConsumerPolicy:     api.PolicyWait,
		Framer:                 func() framing.Framer { return framing.NewRawFramer() },
		WebSocket:              DefaultWebSocketConfig(),
		SocketTuning:           DefaultSocketTuning(),
		Logger:                 api.NopLogger{},
	}
}

// Option customizes a Config (functional-options pattern, grounded on the
// teacher's server/options.go ServerOption).
type Option func(*Config)

// WithMaxConnections overrides max_connections (0 = unlimited).
func WithMaxConnections(n int) Option { return func(c *Config) { c.MaxConnections = n } }

// WithSlowConsumerPolicy overrides the default slow-consumer policy.
func WithSlowConsumerPolicy(p api.SlowConsumerPolicy) Option {
	return func(c *Config) { c.SlowConsumerPolicy = p }
}

// WithFramer overrides the TCP framing discipline factory.
func WithFramer(f func() framing.Framer) Option { return func(c *Config) { c.Framer = f } }

// WithTLS enables server-side TLS.
func WithTLS(cfg *transport.ServerTLSConfig) Option { return func(c *Config) { c.TLS = cfg } }

// WithDualMode enables dual-stack (IPv6-any, both families) listening.
func WithDualMode(v bool) Option { return func(c *Config) { c.DualMode = v } }

// WithLogger overrides the server's logger.
func WithLogger(l api.Logger) Option { return func(c *Config) { c.Logger = l } }

// WithWebSocketConfig overrides the WebSocket-specific options.
func WithWebSocketConfig(ws WebSocketConfig) Option { return func(c *Config) { c.WebSocket = ws } }

// WithBacklog sets Config.Backlog. The value is not applied to the
// listening socket.
func WithBacklog(n int) Option { return func(c *Config) { c.Backlog = n } }
