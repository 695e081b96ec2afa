// Package api defines contracts and shared types consumed by every other
// StormSocket package: transport, framing, WebSocket protocol, sessions,
// middleware, and the server/client orchestrators.
//
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for the StormSocket library.
package api

import (
	"fmt"

	"github.com/pkg/errors"
)

// Common errors used across the library.
var (
	ErrTransportClosed  = errors.New("transport is closed")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotConnected     = errors.New("session is not connected")
	ErrAlreadyHandled   = errors.New("upgrade context already handled")
	ErrMaxConnections   = errors.New("max connections reached")
	ErrHandshakeTimeout = errors.New("handshake timed out")
	ErrMaxAttempts      = errors.New("max reconnect attempts exceeded")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeOutOfRange
	ErrCodeInvalidState
	ErrCodeProtocol
	ErrCodeTimeout
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Wrap annotates err with message, preserving the original cause so that
// errors.Unwrap/errors.Is still reach it.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, message)
}
