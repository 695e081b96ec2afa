// File: server/transport.go
// Author: momentics <momentics@gmail.com>
//
// Shared helper for constructing a plaintext-or-TLS Transport from an
// accepted connection, used by both TCPServer and WSServer (spec §4.1
// "Variants", §4.10 step 2 "Construct a Transport over the socket (TLS or
// plaintext per config)").
package server

import (
	"crypto/tls"
	"net"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/internal/transport"
)

func newServerTransport(conn net.Conn, cfg *Config, logger api.Logger) api.Transport {
	opts := transport.DefaultOptions()
	opts.MaxPendingReceiveBytes = cfg.MaxPendingReceiveBytes
	opts.MaxPendingSendBytes = cfg.MaxPendingSendBytes
	opts.NoDelay = cfg.SocketTuning.NoDelay
	opts.KeepAlive = cfg.SocketTuning.KeepAlive
	opts.Logger = logger

	if cfg.TLS == nil {
		return transport.NewTCPTransport(conn, opts)
	}

	tlsCfg := &tls.Config{
		Certificates: cfg.TLS.Certificates,
		MinVersion:   cfg.TLS.MinVersion,
		MaxVersion:   cfg.TLS.MaxVersion,
	}
	if cfg.TLS.RequireClientCert {
		tlsCfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	tlsConn := tls.Server(conn, tlsCfg)
	return transport.NewServerTLSTransport(tlsConn, opts)
}
