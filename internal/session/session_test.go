package session_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/internal/framing"
	"github.com/suleymanbyzt/StormSocket/internal/session"
)

type fakeAddr struct{ s string }

func (a fakeAddr) Network() string { return "tcp" }
func (a fakeAddr) String() string  { return a.s }

type fakeTransport struct {
	mu      sync.Mutex
	written [][]byte
	closed  bool
	flushErr error
}

func (f *fakeTransport) Handshake(ctx context.Context) error { return nil }
func (f *fakeTransport) Read(ctx context.Context, p []byte) (int, error) { return 0, nil }
func (f *fakeTransport) Write(ctx context.Context, p []byte) (int, error) {
	f.mu.Lock()
	cp := make([]byte, len(p))
	copy(cp, p)
	f.written = append(f.written, cp)
	f.mu.Unlock()
	return len(p), nil
}
func (f *fakeTransport) Flush(ctx context.Context) error { return f.flushErr }
func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}
func (f *fakeTransport) RemoteAddr() net.Addr           { return fakeAddr{"127.0.0.1:1234"} }
func (f *fakeTransport) SetOnSocketError(fn func(error)) {}

func TestWSSession_SendIncrementsMetricsOnSuccess(t *testing.T) {
	tr := &fakeTransport{}
	s := session.NewWSSession(tr, false, api.PolicyWait, nil)
	require.NoError(t, s.SendText([]byte("hello")))
	assert.Equal(t, uint64(5), s.Metrics().BytesSent)
	assert.Len(t, tr.written, 1)
}

func TestWSSession_CloseIsSingleShot(t *testing.T) {
	tr := &fakeTransport{}
	s := session.NewWSSession(tr, false, api.PolicyWait, nil)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, api.StateClosed, s.State())
	assert.True(t, tr.closed)
	// exactly one close frame written despite two Close() calls
	assert.Len(t, tr.written, 1)
}

func TestWSSession_SendAfterCloseFails(t *testing.T) {
	tr := &fakeTransport{}
	s := session.NewWSSession(tr, false, api.PolicyWait, nil)
	require.NoError(t, s.Close())
	err := s.SendText([]byte("too late"))
	require.Error(t, err)
}

func TestWSSession_GroupMembership(t *testing.T) {
	tr := &fakeTransport{}
	s := session.NewWSSession(tr, false, api.PolicyWait, nil)
	s.JoinGroup("lobby")
	assert.ElementsMatch(t, []string{"lobby"}, s.Groups())
	s.LeaveGroup("lobby")
	assert.Empty(t, s.Groups())
}

// blockingTransport's Flush suspends until unblock is closed, simulating a
// peer that never drains its socket.
type blockingTransport struct {
	fakeTransport
	unblock chan struct{}
}

func (f *blockingTransport) Flush(ctx context.Context) error {
	<-f.unblock
	return f.fakeTransport.Flush(ctx)
}

func TestWSSession_PolicyDisconnectAbortsOnSuspendedFlush(t *testing.T) {
	tr := &blockingTransport{unblock: make(chan struct{})}
	s := session.NewWSSession(tr, false, api.PolicyDisconnect, nil)

	done := make(chan error, 1)
	go func() { done <- s.SendText([]byte("x")) }()

	require.Eventually(t, func() bool {
		return s.State() == api.StateClosed
	}, time.Second, 5*time.Millisecond, "session should abort as soon as the flush is observed suspended")

	close(tr.unblock)
	<-done
}

func TestWSSession_PolicyWaitDoesNotAbortOnSuspendedFlush(t *testing.T) {
	tr := &blockingTransport{unblock: make(chan struct{})}
	s := session.NewWSSession(tr, false, api.PolicyWait, nil)

	done := make(chan error, 1)
	go func() { done <- s.SendText([]byte("x")) }()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, api.StateConnected, s.State())

	close(tr.unblock)
	require.NoError(t, <-done)
}

func TestTCPSession_SendFilterTransformsPayload(t *testing.T) {
	tr := &fakeTransport{}
	pipe := framing.NewPipeConnection(tr, framing.NewRawFramer(), nil)
	s := session.NewTCPSession(tr, pipe, api.PolicyWait)
	s.SetSendFilter(func(data []byte) []byte {
		out := make([]byte, len(data))
		for i, c := range data {
			if c >= 'a' && c <= 'z' {
				c -= 'a' - 'A'
			}
			out[i] = c
		}
		return out
	})

	require.NoError(t, s.Send([]byte("hello")))
	require.Len(t, tr.written, 1)
	assert.Equal(t, "HELLO", string(tr.written[0]))
}

func TestTCPSession_SendFilterDropSuppressesWrite(t *testing.T) {
	tr := &fakeTransport{}
	pipe := framing.NewPipeConnection(tr, framing.NewRawFramer(), nil)
	s := session.NewTCPSession(tr, pipe, api.PolicyWait)
	s.SetSendFilter(func([]byte) []byte { return nil })

	require.NoError(t, s.Send([]byte("hello")))
	assert.Empty(t, tr.written)
}

func TestNextID_StrictlyIncreasing(t *testing.T) {
	a := session.NextID()
	b := session.NextID()
	assert.Less(t, a, b)
}
