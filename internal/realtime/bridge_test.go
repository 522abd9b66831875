package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncspace-backend/internal/models"
)

type broadcastCall struct {
	Room    string
	Msg     models.WebSocketMessage
	Exclude string
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	calls  []broadcastCall
	direct []models.WebSocketMessage
}

func (f *fakeBroadcaster) BroadcastRoom(roomID string, msg models.WebSocketMessage, excludeSession string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, broadcastCall{Room: roomID, Msg: msg, Exclude: excludeSession})
}

func (f *fakeBroadcaster) SendToSession(sessionID string, msg models.WebSocketMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direct = append(f.direct, msg)
}

func (f *fakeBroadcaster) byType(eventType string) []broadcastCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []broadcastCall
	for _, c := range f.calls {
		if c.Msg.Type == eventType {
			out = append(out, c)
		}
	}
	return out
}

type fakeStore struct {
	mu sync.Mutex

	users map[string]*models.User

	statusUpdates  map[string]string
	chatMessages   []models.ChatMessage
	notifications  []models.Notification
	editorsAdded   []string
	editorsRemoved []string

	insertChatErr    error
	findUserErr      map[string]error
	insertNotifyErr  error
	editorUpdateErr  error
	statusUpdateErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[string]*models.User),
		statusUpdates: make(map[string]string),
		findUserErr:   make(map[string]error),
	}
}

func (f *fakeStore) SetUserStatus(ctx context.Context, userID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusUpdateErr != nil {
		return f.statusUpdateErr
	}
	f.statusUpdates[userID] = status
	return nil
}

func (f *fakeStore) InsertChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertChatErr != nil {
		return f.insertChatErr
	}
	f.chatMessages = append(f.chatMessages, *msg)
	return nil
}

func (f *fakeStore) FindUserByName(ctx context.Context, name string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.findUserErr[name]; err != nil {
		return nil, err
	}
	return f.users[name], nil
}

func (f *fakeStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertNotifyErr != nil {
		return f.insertNotifyErr
	}
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeStore) AddDocumentEditor(ctx context.Context, documentID, userID, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editorUpdateErr != nil {
		return f.editorUpdateErr
	}
	f.editorsAdded = append(f.editorsAdded, documentID+"/"+userID)
	return nil
}

func (f *fakeStore) RemoveDocumentEditor(ctx context.Context, documentID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editorUpdateErr != nil {
		return f.editorUpdateErr
	}
	f.editorsRemoved = append(f.editorsRemoved, documentID+"/"+userID)
	return nil
}

func newTestBridge() (*Bridge, *fakeBroadcaster, *fakeStore, *Registry) {
	broadcaster := &fakeBroadcaster{}
	st := newFakeStore()
	registry := NewRegistry()
	return NewBridge(broadcaster, registry, st), broadcaster, st, registry
}

func dispatch(t *testing.T, b *Bridge, c *Client, eventType, data string) {
	t.Helper()
	b.Dispatch(c, Envelope{Type: eventType, Data: json.RawMessage(data)})
}

func TestJoinWorkspaceBroadcastsPresenceSnapshot(t *testing.T) {
	b, broadcaster, _, registry := newTestBridge()

	dispatch(t, b, &Client{ID: "s1"}, EventJoinWorkspace,
		`{"workspace_id":"w1","username":"alice","user_id":"u1"}`)
	dispatch(t, b, &Client{ID: "s2"}, EventJoinWorkspace,
		`{"workspace_id":"w1","username":"bob","user_id":"u2"}`)

	assert.Equal(t, 2, registry.Count("workspace_w1"))

	joined := broadcaster.byType("user_joined")
	require.Len(t, joined, 2)
	// Join events are whole-room: presence counts must reach the sender too.
	assert.Equal(t, "", joined[0].Exclude)

	snapshots := broadcaster.byType("user_presence")
	require.Len(t, snapshots, 2)

	last := snapshots[len(snapshots)-1].Msg.Data.(gin.H)
	assert.Equal(t, 2, last["online_count"])
	assert.Len(t, last["users"], 2)
}

func TestJoinWorkspaceDefaultsUserIDToSession(t *testing.T) {
	b, _, _, registry := newTestBridge()

	dispatch(t, b, &Client{ID: "s1"}, EventJoinWorkspace,
		`{"workspace_id":"w1","username":"alice"}`)

	members := registry.Members("workspace_w1")
	require.Len(t, members, 1)
	assert.Equal(t, "s1", members[0].UserID)
}

func TestLeaveWorkspaceSkipsSnapshotWhenRoomEmpty(t *testing.T) {
	b, broadcaster, _, _ := newTestBridge()
	c := &Client{ID: "s1"}

	dispatch(t, b, c, EventJoinWorkspace, `{"workspace_id":"w1","username":"alice","user_id":"u1"}`)
	dispatch(t, b, c, EventLeaveWorkspace, `{"workspace_id":"w1","username":"alice"}`)

	require.Len(t, broadcaster.byType("user_left"), 1)
	// One snapshot from the join; none after the last member left.
	assert.Len(t, broadcaster.byType("user_presence"), 1)
}

func TestLeaveWorkspaceSnapshotsWhileMembersRemain(t *testing.T) {
	b, broadcaster, _, _ := newTestBridge()

	dispatch(t, b, &Client{ID: "s1"}, EventJoinWorkspace, `{"workspace_id":"w1","username":"alice","user_id":"u1"}`)
	dispatch(t, b, &Client{ID: "s2"}, EventJoinWorkspace, `{"workspace_id":"w1","username":"bob","user_id":"u2"}`)
	dispatch(t, b, &Client{ID: "s1"}, EventLeaveWorkspace, `{"workspace_id":"w1","username":"alice"}`)

	snapshots := broadcaster.byType("user_presence")
	require.Len(t, snapshots, 3)
	last := snapshots[len(snapshots)-1].Msg.Data.(gin.H)
	assert.Equal(t, 1, last["online_count"])
}

func TestChatMessagePersistsThenBroadcasts(t *testing.T) {
	b, broadcaster, st, _ := newTestBridge()

	dispatch(t, b, &Client{ID: "s1"}, EventChatMessage,
		`{"workspace_id":"w1","user_id":"u1","username":"alice","message":"hello"}`)

	require.Len(t, st.chatMessages, 1)
	stored := st.chatMessages[0]
	assert.NotEqual(t, uuid.Nil, stored.ID)
	assert.False(t, stored.Timestamp.IsZero())

	messages := broadcaster.byType("new_message")
	require.Len(t, messages, 1)
	assert.Equal(t, "workspace_w1", messages[0].Room)
	assert.Equal(t, "", messages[0].Exclude)

	sent := messages[0].Msg.Data.(*models.ChatMessage)
	assert.Equal(t, stored.ID, sent.ID)
	assert.Equal(t, stored.Timestamp, sent.Timestamp)
}

func TestChatMessageBroadcastsDespiteStorageFailure(t *testing.T) {
	b, broadcaster, st, _ := newTestBridge()
	st.insertChatErr = errors.New("storage down")

	dispatch(t, b, &Client{ID: "s1"}, EventChatMessage,
		`{"workspace_id":"w1","user_id":"u1","username":"alice","message":"hello"}`)

	messages := broadcaster.byType("new_message")
	require.Len(t, messages, 1)
	sent := messages[0].Msg.Data.(*models.ChatMessage)
	assert.NotEqual(t, uuid.Nil, sent.ID)
}

func TestChatMentionCreatesNotification(t *testing.T) {
	b, broadcaster, st, _ := newTestBridge()
	bobID := uuid.New()
	st.users["bob"] = &models.User{ID: bobID, Name: "bob"}

	dispatch(t, b, &Client{ID: "s1"}, EventChatMessage,
		`{"workspace_id":"w1","user_id":"u1","username":"alice","message":"hi @bob"}`)

	require.Len(t, st.notifications, 1)
	n := st.notifications[0]
	assert.Equal(t, bobID.String(), n.UserID)
	assert.Equal(t, "mention", n.Type)
	require.NotNil(t, n.WorkspaceID)
	assert.Equal(t, "w1", *n.WorkspaceID)

	live := broadcaster.byType("live_notification")
	require.Len(t, live, 1)
	assert.Equal(t, UserRoom(bobID.String()), live[0].Room)
}

func TestChatMentionUnknownUserIsSkipped(t *testing.T) {
	b, broadcaster, st, _ := newTestBridge()

	dispatch(t, b, &Client{ID: "s1"}, EventChatMessage,
		`{"workspace_id":"w1","user_id":"u1","username":"alice","message":"hi @ghost"}`)

	assert.Empty(t, st.notifications)
	assert.Empty(t, broadcaster.byType("live_notification"))
	// The message itself still goes out.
	assert.Len(t, broadcaster.byType("new_message"), 1)
}

func TestChatMentionFailuresAreIsolatedPerToken(t *testing.T) {
	b, _, st, _ := newTestBridge()
	bobID := uuid.New()
	st.users["bob"] = &models.User{ID: bobID, Name: "bob"}
	st.findUserErr["carol"] = fmt.Errorf("lookup blew up")

	dispatch(t, b, &Client{ID: "s1"}, EventChatMessage,
		`{"workspace_id":"w1","user_id":"u1","username":"alice","message":"@carol please ask @bob"}`)

	require.Len(t, st.notifications, 1)
	assert.Equal(t, bobID.String(), st.notifications[0].UserID)
}

func TestDocumentJoinUpdatesEditorSetThenBroadcasts(t *testing.T) {
	b, broadcaster, st, registry := newTestBridge()

	dispatch(t, b, &Client{ID: "s1"}, EventJoinDocument,
		`{"document_id":"d1","user_id":"u1","username":"alice"}`)

	assert.Equal(t, []string{"d1/u1"}, st.editorsAdded)
	assert.Equal(t, 1, registry.Count("document_d1"))

	joins := broadcaster.byType("user_joined_document")
	require.Len(t, joins, 1)
	assert.Equal(t, "document_d1", joins[0].Room)
	assert.Equal(t, "s1", joins[0].Exclude)
}

func TestDocumentLeaveRemovesEditorByUserID(t *testing.T) {
	b, broadcaster, st, registry := newTestBridge()

	dispatch(t, b, &Client{ID: "s1"}, EventJoinDocument, `{"document_id":"d1","user_id":"u1","username":"alice"}`)
	dispatch(t, b, &Client{ID: "s1"}, EventLeaveDocument, `{"document_id":"d1","user_id":"u1","username":"alice"}`)

	assert.Equal(t, []string{"d1/u1"}, st.editorsRemoved)
	assert.Equal(t, 0, registry.Count("document_d1"))

	leaves := broadcaster.byType("user_left_document")
	require.Len(t, leaves, 1)
	assert.Equal(t, "s1", leaves[0].Exclude)
}

func TestEphemeralDocumentSignalsExcludeSender(t *testing.T) {
	b, broadcaster, st, _ := newTestBridge()
	c := &Client{ID: "s1"}

	dispatch(t, b, c, EventDocumentTyping, `{"document_id":"d1","username":"alice"}`)
	dispatch(t, b, c, EventDocumentStopTyping, `{"document_id":"d1","username":"alice"}`)
	dispatch(t, b, c, EventDocumentContentChange, `{"document_id":"d1","content":"x","username":"alice","user_id":"u1"}`)
	dispatch(t, b, c, EventDocumentCursorPosition, `{"document_id":"d1","user_id":"u1","username":"alice","position":{"line":3}}`)
	dispatch(t, b, c, EventKanbanUpdate, `{"workspace_id":"w1"}`)
	dispatch(t, b, c, EventTypingStart, `{"workspace_id":"w1","username":"alice"}`)

	broadcaster.mu.Lock()
	defer broadcaster.mu.Unlock()
	require.Len(t, broadcaster.calls, 6)
	for _, call := range broadcaster.calls {
		assert.Equal(t, "s1", call.Exclude, "%s must not echo back to the sender", call.Msg.Type)
	}

	// None of these produce durable writes.
	assert.Empty(t, st.chatMessages)
	assert.Empty(t, st.notifications)
	assert.Empty(t, st.editorsAdded)
}

func TestTaskAssignedNotifiesAssignee(t *testing.T) {
	b, broadcaster, st, _ := newTestBridge()

	dispatch(t, b, &Client{ID: "s1"}, EventTaskAssigned,
		`{"assigned_to":"u9","task_title":"Ship it","assigned_by":"alice"}`)

	require.Len(t, st.notifications, 1)
	assert.Equal(t, "u9", st.notifications[0].UserID)
	assert.Equal(t, "task_assignment", st.notifications[0].Type)
	assert.Equal(t, "alice assigned you to task: Ship it", st.notifications[0].Message)

	live := broadcaster.byType("live_notification")
	require.Len(t, live, 1)
	assert.Equal(t, UserRoom("u9"), live[0].Room)
}

func TestTaskAssignedBroadcastsDespiteStorageFailure(t *testing.T) {
	b, broadcaster, st, _ := newTestBridge()
	st.insertNotifyErr = errors.New("storage down")

	dispatch(t, b, &Client{ID: "s1"}, EventTaskAssigned,
		`{"assigned_to":"u9","task_title":"Ship it","assigned_by":"alice"}`)

	assert.Len(t, broadcaster.byType("live_notification"), 1)
}

func TestNotificationSubscription(t *testing.T) {
	b, broadcaster, _, registry := newTestBridge()
	c := &Client{ID: "s1"}

	dispatch(t, b, c, EventSubscribeNotifications, `{"user_id":"u1"}`)
	assert.Equal(t, 1, registry.Count("user_u1"))

	broadcaster.mu.Lock()
	require.Len(t, broadcaster.direct, 1)
	assert.Equal(t, "notifications_subscribed", broadcaster.direct[0].Type)
	broadcaster.mu.Unlock()

	dispatch(t, b, c, EventUnsubscribeNotifications, `{"user_id":"u1"}`)
	assert.Equal(t, 0, registry.Count("user_u1"))
}

func TestUserStatusUpdatesAsync(t *testing.T) {
	b, _, st, _ := newTestBridge()

	dispatch(t, b, &Client{ID: "s1"}, EventUserOnline, `{"user_id":"u1","username":"alice"}`)

	assert.Eventually(t, func() bool {
		st.mu.Lock()
		defer st.mu.Unlock()
		return st.statusUpdates["u1"] == "online"
	}, time.Second, 10*time.Millisecond)
}

func TestDispatchDropsInvalidEvents(t *testing.T) {
	b, broadcaster, st, registry := newTestBridge()
	c := &Client{ID: "s1"}

	dispatch(t, b, c, EventChatMessage, `{"workspace_id":"w1"}`)
	dispatch(t, b, c, "no_such_event", `{}`)
	dispatch(t, b, c, EventJoinWorkspace, `{not json`)

	broadcaster.mu.Lock()
	assert.Empty(t, broadcaster.calls)
	broadcaster.mu.Unlock()
	assert.Empty(t, st.chatMessages)
	assert.Empty(t, registry.Members("workspace_w1"))
}
