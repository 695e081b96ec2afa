//go:build windows
// +build windows

// File: internal/transport/socket_windows.go
// Author: momentics <momentics@gmail.com>
//
// Dual-mode socket option control for Windows, mirroring the teacher's
// reactor/reactor_windows.go platform split and its use of
// golang.org/x/sys/windows for raw socket option access.
package transport

import (
	"syscall"

	"golang.org/x/sys/windows"
)

func dualModeControl(dualMode bool) func(network, address string, c syscall.RawConn) error {
	if !dualMode {
		return nil
	}
	return func(network, address string, c syscall.RawConn) error {
		_ = c.Control(func(fd uintptr) {
			_ = windows.SetsockoptInt(windows.Handle(fd), windows.IPPROTO_IPV6, windows.IPV6_V6ONLY, 0)
		})
		return nil
	}
}
