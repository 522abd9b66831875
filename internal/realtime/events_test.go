package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(t *testing.T, eventType, data string) Envelope {
	t.Helper()
	return Envelope{Type: eventType, Data: json.RawMessage(data)}
}

func TestDecodeEventChatMessage(t *testing.T) {
	payload, err := decodeEvent(envelope(t, EventChatMessage,
		`{"workspace_id":"w1","user_id":"u1","username":"alice","message":"hi @bob"}`))
	require.NoError(t, err)

	p, ok := payload.(ChatMessagePayload)
	require.True(t, ok)
	assert.Equal(t, "w1", p.WorkspaceID)
	assert.Equal(t, "hi @bob", p.Message)
}

func TestDecodeEventMissingRequiredField(t *testing.T) {
	cases := []struct {
		eventType string
		data      string
	}{
		{EventChatMessage, `{"workspace_id":"w1"}`},
		{EventChatMessage, `{"message":"hi"}`},
		{EventJoinWorkspace, `{"username":"alice"}`},
		{EventJoinDocument, `{"user_id":"u1"}`},
		{EventKanbanUpdate, `{}`},
		{EventTaskAssigned, `{"task_title":"t"}`},
		{EventSubscribeNotifications, `{}`},
	}

	for _, tc := range cases {
		_, err := decodeEvent(envelope(t, tc.eventType, tc.data))
		assert.Error(t, err, "event %s with %s should fail validation", tc.eventType, tc.data)
	}
}

func TestDecodeEventUnknownType(t *testing.T) {
	_, err := decodeEvent(envelope(t, "drop_tables", `{}`))
	assert.ErrorIs(t, err, errUnknownEvent)
}

func TestDecodeEventMalformedJSON(t *testing.T) {
	_, err := decodeEvent(envelope(t, EventChatMessage, `{not json`))
	assert.Error(t, err)
}

func TestDecodeEventSharedPayloadTypes(t *testing.T) {
	for _, eventType := range []string{EventTypingStart, EventTypingStop} {
		payload, err := decodeEvent(envelope(t, eventType, `{"workspace_id":"w1","username":"alice"}`))
		require.NoError(t, err)
		_, ok := payload.(TypingPayload)
		assert.True(t, ok)
	}

	for _, eventType := range []string{EventUserOnline, EventUserOffline} {
		payload, err := decodeEvent(envelope(t, eventType, `{"user_id":"u1","username":"alice"}`))
		require.NoError(t, err)
		_, ok := payload.(UserStatusPayload)
		assert.True(t, ok)
	}
}
