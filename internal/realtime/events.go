package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound event names.
const (
	EventUserOnline               = "user_online"
	EventUserOffline              = "user_offline"
	EventJoinWorkspace            = "join_workspace"
	EventLeaveWorkspace           = "leave_workspace"
	EventJoinDocument             = "join_document"
	EventLeaveDocument            = "leave_document"
	EventDocumentTyping           = "document_typing"
	EventDocumentStopTyping       = "document_stop_typing"
	EventDocumentContentChange    = "document_content_change"
	EventDocumentCursorPosition   = "document_cursor_position"
	EventKanbanUpdate             = "kanban_update"
	EventChatMessage              = "chat_message"
	EventTypingStart              = "typing_start"
	EventTypingStop               = "typing_stop"
	EventTaskAssigned             = "task_assigned"
	EventSubscribeNotifications   = "subscribe_notifications"
	EventUnsubscribeNotifications = "unsubscribe_notifications"
)

var errUnknownEvent = errors.New("unknown event type")

// Envelope is the inbound wire frame: an event name plus its raw payload.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func missingField(event, field string) error {
	return fmt.Errorf("%s: missing required field %q", event, field)
}

type UserStatusPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type JoinWorkspacePayload struct {
	WorkspaceID string `json:"workspace_id"`
	Username    string `json:"username"`
	UserID      string `json:"user_id"`
}

type LeaveWorkspacePayload struct {
	WorkspaceID string `json:"workspace_id"`
	Username    string `json:"username"`
}

type DocumentMembershipPayload struct {
	DocumentID string `json:"document_id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
}

type DocumentTypingPayload struct {
	DocumentID string `json:"document_id"`
	Username   string `json:"username"`
}

type DocumentContentChangePayload struct {
	DocumentID string `json:"document_id"`
	Content    string `json:"content"`
	Username   string `json:"username"`
	UserID     string `json:"user_id"`
}

type DocumentCursorPayload struct {
	DocumentID string          `json:"document_id"`
	UserID     string          `json:"user_id"`
	Username   string          `json:"username"`
	Position   json.RawMessage `json:"position"`
}

type KanbanUpdatePayload struct {
	WorkspaceID string `json:"workspace_id"`
}

type ChatMessagePayload struct {
	WorkspaceID string `json:"workspace_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Message     string `json:"message"`
}

type TypingPayload struct {
	WorkspaceID string `json:"workspace_id"`
	Username    string `json:"username"`
}

type TaskAssignedPayload struct {
	AssignedTo string `json:"assigned_to"`
	TaskTitle  string `json:"task_title"`
	AssignedBy string `json:"assigned_by"`
}

type NotificationSubPayload struct {
	UserID string `json:"user_id"`
}

// decodeEvent turns a raw envelope into the typed payload for its event,
// rejecting unknown events and payloads missing required fields. Handlers
// never see a payload that failed validation.
func decodeEvent(env Envelope) (interface{}, error) {
	switch env.Type {
	case EventUserOnline, EventUserOffline:
		var p UserStatusPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.UserID == "" {
			return nil, missingField(env.Type, "user_id")
		}
		return p, nil

	case EventJoinWorkspace:
		var p JoinWorkspacePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.WorkspaceID == "" {
			return nil, missingField(env.Type, "workspace_id")
		}
		return p, nil

	case EventLeaveWorkspace:
		var p LeaveWorkspacePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.WorkspaceID == "" {
			return nil, missingField(env.Type, "workspace_id")
		}
		return p, nil

	case EventJoinDocument, EventLeaveDocument:
		var p DocumentMembershipPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.DocumentID == "" {
			return nil, missingField(env.Type, "document_id")
		}
		return p, nil

	case EventDocumentTyping, EventDocumentStopTyping:
		var p DocumentTypingPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.DocumentID == "" {
			return nil, missingField(env.Type, "document_id")
		}
		return p, nil

	case EventDocumentContentChange:
		var p DocumentContentChangePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.DocumentID == "" {
			return nil, missingField(env.Type, "document_id")
		}
		return p, nil

	case EventDocumentCursorPosition:
		var p DocumentCursorPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.DocumentID == "" {
			return nil, missingField(env.Type, "document_id")
		}
		return p, nil

	case EventKanbanUpdate:
		var p KanbanUpdatePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.WorkspaceID == "" {
			return nil, missingField(env.Type, "workspace_id")
		}
		return p, nil

	case EventChatMessage:
		var p ChatMessagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.WorkspaceID == "" {
			return nil, missingField(env.Type, "workspace_id")
		}
		if p.Message == "" {
			return nil, missingField(env.Type, "message")
		}
		return p, nil

	case EventTypingStart, EventTypingStop:
		var p TypingPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.WorkspaceID == "" {
			return nil, missingField(env.Type, "workspace_id")
		}
		return p, nil

	case EventTaskAssigned:
		var p TaskAssignedPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.AssignedTo == "" {
			return nil, missingField(env.Type, "assigned_to")
		}
		return p, nil

	case EventSubscribeNotifications, EventUnsubscribeNotifications:
		var p NotificationSubPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.UserID == "" {
			return nil, missingField(env.Type, "user_id")
		}
		return p, nil
	}

	return nil, fmt.Errorf("%w: %q", errUnknownEvent, env.Type)
}
