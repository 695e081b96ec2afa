// File: api/events.go
// Package api defines core event types for StormSocket.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "time"

// ConnectedHandler fires once a session has been registered and is ready.
type ConnectedHandler func(Session)

// DisconnectedHandler fires once a session has been torn down. Registered
// middleware run in reverse order for this stage per spec §4.9.
type DisconnectedHandler func(Session)

// DataHandler fires for each TCP message delivered to the application.
type DataHandler func(Session, []byte)

// MessageHandler fires for each WebSocket text/binary message delivered to
// the application.
type MessageHandler func(session Session, data []byte, isText bool)

// ErrorHandler fires for protocol-level or application errors.
type ErrorHandler func(Session, error)

// SocketErrorHandler fires for unexpected transport-level errors (spec §4.1
// socket-error policy: expected disconnects are swallowed, everything else
// reaches this hook).
type SocketErrorHandler func(Session, error)

// ConnectingHandler authorizes or rejects an inbound WebSocket upgrade
// before a session is created (spec §4.5 "Authorization hook").
type ConnectingHandler func(*UpgradeContext)

// ReconnectingHandler fires before each client reconnect attempt.
type ReconnectingHandler func(attempt int, delay time.Duration)
