package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPresence(userID, username string) Presence {
	return Presence{UserID: userID, Username: username, JoinedAt: time.Now()}
}

func TestRegistryJoinAndMembers(t *testing.T) {
	r := NewRegistry()

	r.Join("workspace_w1", "s1", testPresence("u1", "alice"))
	r.Join("workspace_w1", "s2", testPresence("u2", "bob"))

	assert.Equal(t, 2, r.Count("workspace_w1"))

	members := r.Members("workspace_w1")
	require.Len(t, members, 2)

	names := []string{members[0].Username, members[1].Username}
	assert.ElementsMatch(t, []string{"alice", "bob"}, names)
}

func TestRegistryJoinOverwritesPresence(t *testing.T) {
	r := NewRegistry()

	r.Join("workspace_w1", "s1", testPresence("u1", "alice"))
	r.Join("workspace_w1", "s1", testPresence("u1", "alice2"))

	assert.Equal(t, 1, r.Count("workspace_w1"))
	members := r.Members("workspace_w1")
	require.Len(t, members, 1)
	assert.Equal(t, "alice2", members[0].Username)
}

func TestRegistryLeave(t *testing.T) {
	r := NewRegistry()

	r.Join("workspace_w1", "s1", testPresence("u1", "alice"))
	r.Leave("workspace_w1", "s1")

	assert.Equal(t, 0, r.Count("workspace_w1"))
	assert.Empty(t, r.Members("workspace_w1"))

	// Leaving again, or leaving a room never joined, is a no-op.
	r.Leave("workspace_w1", "s1")
	r.Leave("workspace_nope", "s1")
}

func TestRegistryRemoveSessionEverywhere(t *testing.T) {
	r := NewRegistry()

	r.Join("workspace_w1", "s1", testPresence("u1", "alice"))
	r.Join("document_d1", "s1", testPresence("u1", "alice"))
	r.Join("user_u1", "s1", testPresence("u1", ""))
	r.Join("workspace_w1", "s2", testPresence("u2", "bob"))

	removed := r.RemoveSession("s1")
	require.Len(t, removed, 3)

	rooms := make([]string, 0, len(removed))
	for _, m := range removed {
		rooms = append(rooms, m.RoomID)
		assert.Equal(t, "u1", m.Presence.UserID)
	}
	assert.ElementsMatch(t, []string{"workspace_w1", "document_d1", "user_u1"}, rooms)

	// After removal the session appears in no room's membership.
	for _, room := range []string{"workspace_w1", "document_d1", "user_u1"} {
		for _, sid := range r.Sessions(room) {
			assert.NotEqual(t, "s1", sid)
		}
	}

	// Other sessions are untouched.
	assert.Equal(t, 1, r.Count("workspace_w1"))
	assert.Equal(t, 0, r.Count("document_d1"))
}

func TestRegistryRemoveUnknownSession(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.RemoveSession("ghost"))
}

func TestRoomNaming(t *testing.T) {
	assert.Equal(t, "workspace_w1", WorkspaceRoom("w1"))
	assert.Equal(t, "document_d1", DocumentRoom("d1"))
	assert.Equal(t, "user_u1", UserRoom("u1"))

	assert.True(t, isWorkspaceRoom(WorkspaceRoom("w1")))
	assert.False(t, isWorkspaceRoom(DocumentRoom("d1")))
	assert.False(t, isWorkspaceRoom(UserRoom("u1")))
	assert.Equal(t, "w1", workspaceFromRoom(WorkspaceRoom("w1")))
}
