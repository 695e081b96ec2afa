package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/internal/session"
)

func TestManager_TryAddTryRemove(t *testing.T) {
	m := session.NewManager()
	s := session.NewWSSession(&fakeTransport{}, false, api.PolicyWait, nil)

	require.True(t, m.TryAdd(s))
	require.False(t, m.TryAdd(s)) // duplicate id rejected

	got, ok := m.Get(s.ID())
	require.True(t, ok)
	assert.Equal(t, s.ID(), got.ID())

	removed, ok := m.TryRemove(s.ID())
	require.True(t, ok)
	assert.Equal(t, s.ID(), removed.ID())
	assert.Equal(t, 0, m.Count())
}

func TestManager_BroadcastExcludesSender(t *testing.T) {
	m := session.NewManager()
	tr1, tr2 := &fakeTransport{}, &fakeTransport{}
	s1 := session.NewWSSession(tr1, false, api.PolicyWait, nil)
	s2 := session.NewWSSession(tr2, false, api.PolicyWait, nil)
	m.TryAdd(s1)
	m.TryAdd(s2)

	m.Broadcast([]byte("hi"), s1.ID())

	assert.Empty(t, tr1.written)
	assert.Len(t, tr2.written, 1)
}

func TestManager_CloseAllClearsMap(t *testing.T) {
	m := session.NewManager()
	s := session.NewWSSession(&fakeTransport{}, false, api.PolicyWait, nil)
	m.TryAdd(s)

	m.CloseAll()

	assert.Equal(t, 0, m.Count())
	assert.Equal(t, api.StateClosed, s.State())
}
