package realtime

import (
	"sync"
	"time"
)

// Room key prefixes. Rooms have no type tag; the kind of a room is encoded
// in its key alone.
const (
	workspaceRoomPrefix = "workspace_"
	documentRoomPrefix  = "document_"
	userRoomPrefix      = "user_"
)

func WorkspaceRoom(workspaceID string) string { return workspaceRoomPrefix + workspaceID }
func DocumentRoom(documentID string) string   { return documentRoomPrefix + documentID }
func UserRoom(userID string) string           { return userRoomPrefix + userID }

func isWorkspaceRoom(roomID string) bool {
	return len(roomID) > len(workspaceRoomPrefix) && roomID[:len(workspaceRoomPrefix)] == workspaceRoomPrefix
}

func workspaceFromRoom(roomID string) string {
	return roomID[len(workspaceRoomPrefix):]
}

// Presence is the per-session metadata shown to room peers.
type Presence struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
}

// Membership pairs a room with the presence record a session held in it.
type Membership struct {
	RoomID   string
	Presence Presence
}

// Registry tracks which sessions are in which rooms. Rooms exist only while
// they have members; an empty room is deleted. A reverse index keeps
// disconnect cleanup proportional to the number of rooms the session joined.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]map[string]Presence
	sessions map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[string]map[string]Presence),
		sessions: make(map[string]map[string]struct{}),
	}
}

// Join inserts or overwrites the presence record for the session. It never
// fails; joining twice updates the record in place.
func (r *Registry) Join(roomID, sessionID string, p Presence) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		room = make(map[string]Presence)
		r.rooms[roomID] = room
	}
	room[sessionID] = p

	rooms, ok := r.sessions[sessionID]
	if !ok {
		rooms = make(map[string]struct{})
		r.sessions[sessionID] = rooms
	}
	rooms[roomID] = struct{}{}
}

// Leave removes the session from the room. Leaving a room the session is not
// in is a no-op.
func (r *Registry) Leave(roomID, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(roomID, sessionID)
}

func (r *Registry) leaveLocked(roomID, sessionID string) {
	if room, ok := r.rooms[roomID]; ok {
		delete(room, sessionID)
		if len(room) == 0 {
			delete(r.rooms, roomID)
		}
	}
	if rooms, ok := r.sessions[sessionID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(r.sessions, sessionID)
		}
	}
}

// Members returns a snapshot of the presence records currently in the room.
func (r *Registry) Members(roomID string) []Presence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[roomID]
	members := make([]Presence, 0, len(room))
	for _, p := range room {
		members = append(members, p)
	}
	return members
}

// Sessions returns a snapshot of the session ids currently in the room.
func (r *Registry) Sessions(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[roomID]
	ids := make([]string, 0, len(room))
	for sid := range room {
		ids = append(ids, sid)
	}
	return ids
}

// Count returns the number of sessions in the room.
func (r *Registry) Count(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

// RemoveSession removes the session from every room it belongs to and
// returns the memberships it held, so the caller can emit per-room departure
// events.
func (r *Registry) RemoveSession(sessionID string) []Membership {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}

	removed := make([]Membership, 0, len(rooms))
	for roomID := range rooms {
		if room, ok := r.rooms[roomID]; ok {
			if p, ok := room[sessionID]; ok {
				removed = append(removed, Membership{RoomID: roomID, Presence: p})
			}
			delete(room, sessionID)
			if len(room) == 0 {
				delete(r.rooms, roomID)
			}
		}
	}
	delete(r.sessions, sessionID)
	return removed
}
