// File: internal/session/manager.go
// Author: momentics <momentics@gmail.com>
//
// SessionManager: concurrent id->Session map with broadcast and close-all
// (spec §4.8). Grounded on the teacher's internal/session/store.go
// SessionManager/sharded map, simplified to a single concurrent map: spec
// §4.8 has no sharding requirement, and the teacher's shard count is a
// throughput optimization orthogonal to the contract under test.
package session

import (
	"sync"

	"github.com/suleymanbyzt/StormSocket/api"
)

// Manager is a thread-safe id->Session registry.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uint64]api.Session
}

// NewManager constructs an empty Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[uint64]api.Session)}
}

// TryAdd inserts s, failing if its id is already present.
func (m *Manager) TryAdd(s api.Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[s.ID()]; exists {
		return false
	}
	m.sessions[s.ID()] = s
	return true
}

// TryRemove removes and returns the session for id, if present.
func (m *Manager) TryRemove(id uint64) (api.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	return s, ok
}

// Get returns the session for id, if present.
func (m *Manager) Get(id uint64) (api.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Count returns the number of registered sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// snapshot returns a point-in-time copy of all sessions, safe to iterate
// without holding the manager's lock (spec §5 "iteration yields snapshots
// safe against concurrent mutation").
func (m *Manager) snapshot() []api.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]api.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Broadcast sends data to every session except excludeID (pass 0 to exclude
// none, since ids start at 1), dispatching concurrently and swallowing
// per-session errors (spec §4.8).
func (m *Manager) Broadcast(data []byte, excludeID uint64) {
	var wg sync.WaitGroup
	for _, s := range m.snapshot() {
		if s.ID() == excludeID {
			continue
		}
		wg.Add(1)
		go func(s api.Session) {
			defer wg.Done()
			_ = s.Send(data)
		}(s)
	}
	wg.Wait()
}

// CloseAll closes every session, swallowing errors, then clears the map.
func (m *Manager) CloseAll() {
	for _, s := range m.snapshot() {
		_ = s.Close()
	}
	m.mu.Lock()
	m.sessions = make(map[uint64]api.Session)
	m.mu.Unlock()
}

// Range invokes fn for every session in a consistent snapshot.
func (m *Manager) Range(fn func(api.Session)) {
	for _, s := range m.snapshot() {
		fn(s)
	}
}
