// File: api/upgrade.go
// Author: momentics <momentics@gmail.com>
//
// UpgradeContext is the parsed HTTP/1.1 WebSocket upgrade request handed to
// the server's on_connecting authorization hook (spec §3, §4.5). It may be
// accepted or rejected exactly once.
package api

import (
	"net"
	"net/http"
	"net/url"
	"sync"
)

// UpgradeContext carries everything an authorization hook needs to decide
// whether to accept an inbound WebSocket upgrade.
type UpgradeContext struct {
	Path        string
	QueryString string
	Query       url.Values
	Headers     http.Header // case-insensitive via http.Header's Get/Set
	WSKey       string
	RemoteAddr  net.Addr

	mu           sync.Mutex
	handled      bool
	accepted     bool
	rejectStatus int
	rejectReason string
}

// NewUpgradeContext constructs a fresh, unhandled context.
func NewUpgradeContext(path, query string, q url.Values, h http.Header, key string, remote net.Addr) *UpgradeContext {
	return &UpgradeContext{
		Path:        path,
		QueryString: query,
		Query:       q,
		Headers:     h,
		WSKey:       key,
		RemoteAddr:  remote,
	}
}

// Accept marks the upgrade as authorized. Returns ErrAlreadyHandled if
// Accept or Reject was already called.
func (c *UpgradeContext) Accept() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handled {
		return ErrAlreadyHandled
	}
	c.handled = true
	c.accepted = true
	return nil
}

// Reject marks the upgrade as refused with an arbitrary HTTP status and
// reason. Returns ErrAlreadyHandled if Accept or Reject was already called.
func (c *UpgradeContext) Reject(status int, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handled {
		return ErrAlreadyHandled
	}
	c.handled = true
	c.accepted = false
	c.rejectStatus = status
	c.rejectReason = reason
	return nil
}

// Handled reports whether Accept or Reject has been called.
func (c *UpgradeContext) Handled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handled
}

// Accepted reports the decision. Only meaningful once Handled() is true.
func (c *UpgradeContext) Accepted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accepted
}

// RejectStatus returns the status code passed to Reject (0 if never called).
func (c *UpgradeContext) RejectStatus() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rejectStatus
}

// RejectReason returns the reason passed to Reject.
func (c *UpgradeContext) RejectReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rejectReason
}
