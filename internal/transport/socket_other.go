//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows
// +build !linux,!darwin,!freebsd,!netbsd,!openbsd,!windows

// File: internal/transport/socket_other.go
// Author: momentics <momentics@gmail.com>
//
// Fallback for platforms without a golang.org/x/sys binding used above:
// dual-mode still works via Go's own default (IPV6_V6ONLY=0 for "tcp"
// listeners on an IPv6 any-address), just without an explicit override.
package transport

import "syscall"

func dualModeControl(dualMode bool) func(network, address string, c syscall.RawConn) error {
	return nil
}
