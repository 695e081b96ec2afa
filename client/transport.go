// File: client/transport.go
// Author: momentics <momentics@gmail.com>
//
// Shared helper for dialing a plaintext-or-TLS Transport (spec §4.11 "TCP
// connect"/"WebSocket connect": "apply optional TLS handshake"), mirroring
// server/transport.go's plaintext-or-TLS construction on the dial side.
package client

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/internal/transport"
	"github.com/suleymanbyzt/StormSocket/server"
)

func dial(ctx context.Context, host string, tuning server.SocketTuning, tlsCfg *transport.ClientTLSConfig, logger api.Logger) (api.Transport, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return nil, err
	}
	transport.ApplySocketTuning(conn, tuning.NoDelay, tuning.KeepAlive)

	opts := transport.DefaultOptions()
	opts.Logger = logger

	if tlsCfg == nil {
		return transport.NewTCPTransport(conn, opts), nil
	}

	cfg := &tls.Config{
		ServerName:         tlsCfg.ServerName,
		MinVersion:         tlsCfg.MinVersion,
		MaxVersion:         tlsCfg.MaxVersion,
		InsecureSkipVerify: tlsCfg.InsecureSkipVerify,
		VerifyConnection:   tlsCfg.VerifyConnection,
		Certificates:       tlsCfg.Certificates,
	}
	tlsConn := tls.Client(conn, cfg)
	return transport.NewClientTLSTransport(tlsConn, opts), nil
}
