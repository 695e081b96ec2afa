// File: api/logger.go
// Author: momentics <momentics@gmail.com>
//
// Minimal structured logging contract (spec §1.1 AMBIENT). The teacher's
// own tree never imports a third-party logging library, so StormSocket's
// default implementation stays on the standard library's log package rather
// than inventing an ecosystem dependency the pack never exercised.
package api

import (
	"log"
	"os"
)

// Logger is the leveled logging contract threaded through transport,
// wsproto, session, server, and client options.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards everything. Used as the default when no Logger is
// configured.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// StdLogger is a small leveled logger backed by log.Logger.
type StdLogger struct {
	debug *log.Logger
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
}

// NewStdLogger builds a StdLogger writing to os.Stderr with the given prefix.
func NewStdLogger(prefix string) *StdLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &StdLogger{
		debug: log.New(os.Stderr, prefix+"DEBUG ", flags),
		info:  log.New(os.Stderr, prefix+"INFO  ", flags),
		warn:  log.New(os.Stderr, prefix+"WARN  ", flags),
		err:   log.New(os.Stderr, prefix+"ERROR ", flags),
	}
}

func (l *StdLogger) Debugf(format string, args ...any) { l.debug.Printf(format, args...) }
func (l *StdLogger) Infof(format string, args ...any)  { l.info.Printf(format, args...) }
func (l *StdLogger) Warnf(format string, args ...any)  { l.warn.Printf(format, args...) }
func (l *StdLogger) Errorf(format string, args ...any) { l.err.Printf(format, args...) }

// tracedLogger prefixes every line with a connection trace id, so log
// aggregation can correlate the accept-time line with every later line for
// the same connection (spec §4.12).
type tracedLogger struct {
	inner   Logger
	traceID string
}

// WithTraceID wraps inner so every log line carries traceID. Purely a
// debugging aid; it never substitutes for Session.ID.
func WithTraceID(inner Logger, traceID string) Logger {
	return &tracedLogger{inner: inner, traceID: traceID}
}

func (l *tracedLogger) Debugf(format string, args ...any) {
	l.inner.Debugf("[trace=%s] "+format, append([]any{l.traceID}, args...)...)
}
func (l *tracedLogger) Infof(format string, args ...any) {
	l.inner.Infof("[trace=%s] "+format, append([]any{l.traceID}, args...)...)
}
func (l *tracedLogger) Warnf(format string, args ...any) {
	l.inner.Warnf("[trace=%s] "+format, append([]any{l.traceID}, args...)...)
}
func (l *tracedLogger) Errorf(format string, args ...any) {
	l.inner.Errorf("[trace=%s] "+format, append([]any{l.traceID}, args...)...)
}
