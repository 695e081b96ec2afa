package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suleymanbyzt/StormSocket/api"
	"github.com/suleymanbyzt/StormSocket/internal/session"
)

func TestGroups_AddRemoveDeletesEmptyGroup(t *testing.T) {
	g := session.NewGroups()
	s := session.NewWSSession(&fakeTransport{}, false, api.PolicyWait, nil)

	g.Add("lobby", s)
	assert.Equal(t, 1, g.MemberCount("lobby"))
	assert.Contains(t, g.GroupNames(), "lobby")

	g.Remove("lobby", s)
	assert.Equal(t, 0, g.MemberCount("lobby"))
	assert.NotContains(t, g.GroupNames(), "lobby")
}

func TestGroups_RemoveFromAll(t *testing.T) {
	g := session.NewGroups()
	s := session.NewWSSession(&fakeTransport{}, false, api.PolicyWait, nil)

	g.Add("a", s)
	g.Add("b", s)
	assert.ElementsMatch(t, []string{"a", "b"}, s.Groups())

	g.RemoveFromAll(s)
	assert.Empty(t, s.Groups())
	assert.Equal(t, 0, g.MemberCount("a"))
	assert.Equal(t, 0, g.MemberCount("b"))
}

func TestGroups_BroadcastMissingGroupIsNoop(t *testing.T) {
	g := session.NewGroups()
	assert.NotPanics(t, func() {
		g.Broadcast("nonexistent", []byte("x"), 0)
	})
}
