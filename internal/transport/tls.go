// File: internal/transport/tls.go
// Author: momentics <momentics@gmail.com>
//
// TLS-wrapped transport. Per spec §1 TLS is specified at interface level:
// the core consumes a byte-stream abstraction that may be plaintext or
// TLS-wrapped. No third-party TLS library appears anywhere in the example
// pack, so this is a justified direct use of the standard library's
// crypto/tls (spec §4.1 "Variants").
package transport

import (
	"context"
	"crypto/tls"
)

// ServerTLSConfig configures server-side TLS (spec §4.1 "Server TLS takes a
// certificate and optional require-client-certificate flag").
type ServerTLSConfig struct {
	Certificates           []tls.Certificate
	RequireClientCert      bool
	MinVersion, MaxVersion uint16
}

func (c ServerTLSConfig) tlsConfig() *tls.Config {
	cfg := &tls.Config{
		Certificates: c.Certificates,
		MinVersion:   c.MinVersion,
		MaxVersion:   c.MaxVersion,
	}
	if c.RequireClientCert {
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return cfg
}

// ClientTLSConfig configures client-side TLS (spec §4.1 "client TLS takes a
// target host, allowed protocol versions, optional custom certificate
// validator, optional client certificate").
type ClientTLSConfig struct {
	ServerName             string
	MinVersion, MaxVersion uint16
	InsecureSkipVerify     bool
	VerifyConnection       func(tls.ConnectionState) error
	Certificates           []tls.Certificate
}

func (c ClientTLSConfig) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName:         c.ServerName,
		MinVersion:         c.MinVersion,
		MaxVersion:         c.MaxVersion,
		InsecureSkipVerify: c.InsecureSkipVerify,
		VerifyConnection:   c.VerifyConnection,
		Certificates:       c.Certificates,
	}
}

// TLSTransport wraps TCPTransport, performing the TLS handshake during
// Handshake() before starting the read/write pumps.
type TLSTransport struct {
	*TCPTransport
	tlsConn *tls.Conn
}

// NewServerTLSTransport wraps a raw connection as a TLS server.
func NewServerTLSTransport(conn *tls.Conn, opts Options) *TLSTransport {
	return &TLSTransport{TCPTransport: NewTCPTransport(conn, opts), tlsConn: conn}
}

// NewClientTLSTransport wraps a raw connection as a TLS client.
func NewClientTLSTransport(conn *tls.Conn, opts Options) *TLSTransport {
	return &TLSTransport{TCPTransport: NewTCPTransport(conn, opts), tlsConn: conn}
}

// Handshake performs the TLS handshake then starts the pumps. Idempotent:
// tls.Conn.HandshakeContext itself is safe to call multiple times.
func (t *TLSTransport) Handshake(ctx context.Context) error {
	if err := t.tlsConn.HandshakeContext(ctx); err != nil {
		return err
	}
	return t.TCPTransport.Handshake(ctx)
}
