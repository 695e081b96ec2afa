//go:build linux || darwin || freebsd || netbsd || openbsd
// +build linux darwin freebsd netbsd openbsd

// File: internal/transport/socket_unix.go
// Author: momentics <momentics@gmail.com>
//
// Dual-mode socket option control for Unix-like platforms, grounded on the
// teacher's reactor/reactor_linux.go use of golang.org/x/sys/unix for raw
// socket manipulation unavailable from the net package alone.
package transport

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func dualModeControl(dualMode bool) func(network, address string, c syscall.RawConn) error {
	if !dualMode {
		return nil
	}
	return func(network, address string, c syscall.RawConn) error {
		// Best-effort: only meaningful for IPv6 sockets; ignore the error on
		// IPv4-only listeners rather than failing the whole Listen call.
		_ = c.Control(func(fd uintptr) {
			_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 0)
		})
		return nil
	}
}
