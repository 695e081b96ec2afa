// File: internal/transport/socket.go
// Author: momentics <momentics@gmail.com>
//
// Socket tuning (TCP_NODELAY, keepalive) and dual-mode listening (spec §6
// SocketTuning, §4.10 "dual_mode listens on IPv6 any and accepts both
// families"). NoDelay/KeepAlive use net.TCPConn directly since the standard
// library already exposes cross-platform setsockopt wrappers for them; the
// dual-mode IPV6_V6ONLY override goes through golang.org/x/sys (the
// teacher's own dependency, used the same way the teacher uses it in
// reactor/reactor_linux.go and reactor/reactor_windows.go: raw socket option
// control unavailable from net alone) via per-platform files.
package transport

import (
	"context"
	"net"
	"time"
)

// ApplySocketTuning applies TCP_NODELAY and keepalive settings to an
// accepted or dialed connection (spec §6 SocketTuning).
func ApplySocketTuning(conn net.Conn, noDelay, keepAlive bool) {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tc.SetNoDelay(noDelay)
	if keepAlive {
		_ = tc.SetKeepAlive(true)
		_ = tc.SetKeepAlivePeriod(30 * time.Second)
	} else {
		_ = tc.SetKeepAlive(false)
	}
}

// Listen binds addr on network. When dualMode is true, a platform-specific
// control hook clears IPV6_V6ONLY so an IPv6 any-address listener accepts
// both families; when it is false, no socket option is overridden and Go's
// defaults apply.
func Listen(network, addr string, dualMode bool) (net.Listener, error) {
	lc := net.ListenConfig{Control: dualModeControl(dualMode)}
	return lc.Listen(context.Background(), network, addr)
}
