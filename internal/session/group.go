// File: internal/session/group.go
// Author: momentics <momentics@gmail.com>
//
// SessionGroup: named groups of sessions with membership bookkeeping and
// group broadcast (spec §4.8, §3 "SessionGroup"). New relative to the
// teacher (which has no group concept); grounded on the same
// sync.RWMutex-guarded map idiom used in manager.go for consistency within
// the package.
package session

import (
	"sync"

	"github.com/suleymanbyzt/StormSocket/api"
)

// GroupSession is the subset of api.Session a group needs to mutate
// membership bookkeeping; satisfied by TCPSession/WSSession via *base.
type GroupSession interface {
	api.Session
}

// Groups maps group name -> (id -> Session). Empty groups are deleted
// (spec §3 "Empty groups are deleted").
type Groups struct {
	mu     sync.RWMutex
	byName map[string]map[uint64]api.Session
}

// NewGroups constructs an empty Groups registry.
func NewGroups() *Groups {
	return &Groups{byName: make(map[string]map[uint64]api.Session)}
}

// Add joins s to group, creating the group if absent, and updates s's own
// group set (spec §4.8 "add creates the group if absent").
func (g *Groups) Add(group string, s api.Session) {
	g.mu.Lock()
	members, ok := g.byName[group]
	if !ok {
		members = make(map[uint64]api.Session)
		g.byName[group] = members
	}
	members[s.ID()] = s
	g.mu.Unlock()
	s.JoinGroup(group)
}

// Remove removes s from group, deleting the group if it becomes empty
// (spec §4.8 "remove deletes the group if it becomes empty, checked under
// the same mutation").
func (g *Groups) Remove(group string, s api.Session) {
	g.mu.Lock()
	if members, ok := g.byName[group]; ok {
		delete(members, s.ID())
		if len(members) == 0 {
			delete(g.byName, group)
		}
	}
	g.mu.Unlock()
	s.LeaveGroup(group)
}

// RemoveFromAll removes s from every group it currently belongs to
// (spec §4.8 "remove_from_all").
func (g *Groups) RemoveFromAll(s api.Session) {
	for _, name := range s.Groups() {
		g.Remove(name, s)
	}
}

// snapshot returns a point-in-time copy of a group's members.
func (g *Groups) snapshot(group string) []api.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	members, ok := g.byName[group]
	if !ok {
		return nil
	}
	out := make([]api.Session, 0, len(members))
	for _, s := range members {
		out = append(out, s)
	}
	return out
}

// Broadcast sends data to every member of group except excludeID, swallowing
// per-session errors; a missing group is a no-op (spec §4.8).
func (g *Groups) Broadcast(group string, data []byte, excludeID uint64) {
	var wg sync.WaitGroup
	for _, s := range g.snapshot(group) {
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

// MemberCount returns the number of sessions currently in group.
func (g *Groups) MemberCount(group string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byName[group])
}

// GroupNames returns a snapshot of all non-empty group names.
func (g *Groups) GroupNames() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.byName))
	for name := range g.byName {
		out = append(out, name)
	}
	return out
}
