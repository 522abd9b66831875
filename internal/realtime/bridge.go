package realtime

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"syncspace-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// storageTimeout bounds every durable write made while handling a live
// event. The broadcast proceeds whether or not the write succeeded.
const storageTimeout = 5 * time.Second

// Broadcaster is the fan-out surface the bridge needs from the hub.
type Broadcaster interface {
	BroadcastRoom(roomID string, msg models.WebSocketMessage, excludeSession string)
	SendToSession(sessionID string, msg models.WebSocketMessage)
}

// Store is the slice of the storage gateway the realtime layer touches.
type Store interface {
	SetUserStatus(ctx context.Context, userID, status string) error
	InsertChatMessage(ctx context.Context, msg *models.ChatMessage) error
	FindUserByName(ctx context.Context, name string) (*models.User, error)
	InsertNotification(ctx context.Context, n *models.Notification) error
	AddDocumentEditor(ctx context.Context, documentID, userID, username string) error
	RemoveDocumentEditor(ctx context.Context, documentID, userID string) error
}

// Bridge routes validated inbound events to their room membership changes,
// broadcasts, and durable side effects. Storage failures are logged and the
// live path continues; nothing here may terminate the session.
type Bridge struct {
	broadcaster Broadcaster
	registry    *Registry
	store       Store
}

func NewBridge(broadcaster Broadcaster, registry *Registry, store Store) *Bridge {
	return &Bridge{
		broadcaster: broadcaster,
		registry:    registry,
		store:       store,
	}
}

// Dispatch validates the envelope and runs the handler for its event type.
// Malformed or unknown events are dropped without affecting the session.
func (b *Bridge) Dispatch(c *Client, env Envelope) {
	payload, err := decodeEvent(env)
	if err != nil {
		log.Printf("Dropping event from %s: %v", c.ID, err)
		return
	}

	switch env.Type {
	case EventUserOnline:
		b.handleUserStatus(payload.(UserStatusPayload), "online")
	case EventUserOffline:
		b.handleUserStatus(payload.(UserStatusPayload), "offline")
	case EventJoinWorkspace:
		b.handleJoinWorkspace(c, payload.(JoinWorkspacePayload))
	case EventLeaveWorkspace:
		b.handleLeaveWorkspace(c, payload.(LeaveWorkspacePayload))
	case EventJoinDocument:
		b.handleJoinDocument(c, payload.(DocumentMembershipPayload))
	case EventLeaveDocument:
		b.handleLeaveDocument(c, payload.(DocumentMembershipPayload))
	case EventDocumentTyping:
		b.handleDocumentTyping(c, payload.(DocumentTypingPayload), true)
	case EventDocumentStopTyping:
		b.handleDocumentTyping(c, payload.(DocumentTypingPayload), false)
	case EventDocumentContentChange:
		b.handleDocumentContentChange(c, payload.(DocumentContentChangePayload))
	case EventDocumentCursorPosition:
		b.handleDocumentCursor(c, payload.(DocumentCursorPayload))
	case EventKanbanUpdate:
		b.handleKanbanUpdate(c, payload.(KanbanUpdatePayload))
	case EventChatMessage:
		b.handleChatMessage(c, payload.(ChatMessagePayload))
	case EventTypingStart:
		b.handleTyping(c, payload.(TypingPayload), true)
	case EventTypingStop:
		b.handleTyping(c, payload.(TypingPayload), false)
	case EventTaskAssigned:
		b.handleTaskAssigned(payload.(TaskAssignedPayload))
	case EventSubscribeNotifications:
		b.handleSubscribeNotifications(c, payload.(NotificationSubPayload))
	case EventUnsubscribeNotifications:
		b.handleUnsubscribeNotifications(c, payload.(NotificationSubPayload))
	}
}

func (b *Bridge) handleUserStatus(p UserStatusPayload, status string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()
		if err := b.store.SetUserStatus(ctx, p.UserID, status); err != nil {
			log.Printf("Error updating user status: %v", err)
		}
	}()
}

func (b *Bridge) handleJoinWorkspace(c *Client, p JoinWorkspacePayload) {
	userID := p.UserID
	if userID == "" {
		userID = c.ID
	}

	room := WorkspaceRoom(p.WorkspaceID)
	b.registry.Join(room, c.ID, Presence{
		UserID:   userID,
		Username: p.Username,
		JoinedAt: time.Now(),
	})

	b.broadcaster.BroadcastRoom(room, models.WebSocketMessage{
		Type: "user_joined",
		Data: gin.H{
			"username": p.Username,
			"message":  fmt.Sprintf("%s joined the workspace", p.Username),
		},
	}, "")
	b.broadcastPresence(room)
}

func (b *Bridge) handleLeaveWorkspace(c *Client, p LeaveWorkspacePayload) {
	room := WorkspaceRoom(p.WorkspaceID)
	b.registry.Leave(room, c.ID)

	b.broadcaster.BroadcastRoom(room, models.WebSocketMessage{
		Type: "user_left",
		Data: gin.H{"username": p.Username},
	}, "")

	// Snapshot only while the room still tracks someone; an empty room has
	// nobody left to heal.
	if b.registry.Count(room) > 0 {
		b.broadcastPresence(room)
	}
}

func (b *Bridge) handleJoinDocument(c *Client, p DocumentMembershipPayload) {
	room := DocumentRoom(p.DocumentID)
	b.registry.Join(room, c.ID, Presence{
		UserID:   p.UserID,
		Username: p.Username,
		JoinedAt: time.Now(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	if err := b.store.AddDocumentEditor(ctx, p.DocumentID, p.UserID, p.Username); err != nil {
		log.Printf("Error updating document editors: %v", err)
	}

	b.broadcaster.BroadcastRoom(room, models.WebSocketMessage{
		Type: "user_joined_document",
		Data: gin.H{"username": p.Username},
	}, c.ID)
}

func (b *Bridge) handleLeaveDocument(c *Client, p DocumentMembershipPayload) {
	room := DocumentRoom(p.DocumentID)
	b.registry.Leave(room, c.ID)

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	if err := b.store.RemoveDocumentEditor(ctx, p.DocumentID, p.UserID); err != nil {
		log.Printf("Error updating document editors: %v", err)
	}

	b.broadcaster.BroadcastRoom(room, models.WebSocketMessage{
		Type: "user_left_document",
		Data: gin.H{"username": p.Username},
	}, c.ID)
}

func (b *Bridge) handleDocumentTyping(c *Client, p DocumentTypingPayload, typing bool) {
	b.broadcaster.BroadcastRoom(DocumentRoom(p.DocumentID), models.WebSocketMessage{
		Type: "user_typing_document",
		Data: gin.H{"username": p.Username, "typing": typing},
	}, c.ID)
}

func (b *Bridge) handleDocumentContentChange(c *Client, p DocumentContentChangePayload) {
	// The server relays content as-is; merging concurrent edits is the
	// client's problem.
	b.broadcaster.BroadcastRoom(DocumentRoom(p.DocumentID), models.WebSocketMessage{
		Type: "document_updated",
		Data: gin.H{
			"content":   p.Content,
			"username":  p.Username,
			"user_id":   p.UserID,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}, c.ID)
}

func (b *Bridge) handleDocumentCursor(c *Client, p DocumentCursorPayload) {
	b.broadcaster.BroadcastRoom(DocumentRoom(p.DocumentID), models.WebSocketMessage{
		Type: "cursor_position_update",
		Data: gin.H{
			"user_id":  p.UserID,
			"username": p.Username,
			"position": p.Position,
		},
	}, c.ID)
}

func (b *Bridge) handleKanbanUpdate(c *Client, p KanbanUpdatePayload) {
	// No diff is computed; clients re-fetch the board on this signal.
	b.broadcaster.BroadcastRoom(WorkspaceRoom(p.WorkspaceID), models.WebSocketMessage{
		Type: "kanban_changed",
		Data: gin.H{
			"workspace_id": p.WorkspaceID,
			"timestamp":    time.Now().Format(time.RFC3339),
		},
	}, c.ID)
}

func (b *Bridge) handleChatMessage(c *Client, p ChatMessagePayload) {
	msg := &models.ChatMessage{
		ID:          uuid.New(),
		WorkspaceID: p.WorkspaceID,
		UserID:      p.UserID,
		Username:    p.Username,
		Message:     p.Message,
		Timestamp:   time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	if err := b.store.InsertChatMessage(ctx, msg); err != nil {
		log.Printf("Error saving message: %v", err)
	}

	b.broadcaster.BroadcastRoom(WorkspaceRoom(p.WorkspaceID), models.WebSocketMessage{
		Type: "new_message",
		Data: msg,
	}, "")

	if strings.Contains(p.Message, "@") {
		b.notifyMentions(p)
	}
}

// notifyMentions scans the message for @name tokens and, for each token
// naming an existing user, stores a mention notification and nudges that
// user's personal room. Matching is exact and case-sensitive on display
// name, first matching user wins, and a failure on one token never blocks
// the others.
func (b *Bridge) notifyMentions(p ChatMessagePayload) {
	for _, word := range strings.Fields(p.Message) {
		if !strings.HasPrefix(word, "@") || len(word) == 1 {
			continue
		}
		mentioned := word[1:]

		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		user, err := b.store.FindUserByName(ctx, mentioned)
		cancel()
		if err != nil {
			log.Printf("Error handling mention %q: %v", mentioned, err)
			continue
		}
		if user == nil {
			continue
		}

		text := fmt.Sprintf("%s mentioned you in chat", p.Username)
		workspaceID := p.WorkspaceID
		notification := &models.Notification{
			UserID:      user.ID.String(),
			Message:     text,
			Type:        "mention",
			WorkspaceID: &workspaceID,
		}

		ctx, cancel = context.WithTimeout(context.Background(), storageTimeout)
		err = b.store.InsertNotification(ctx, notification)
		cancel()
		if err != nil {
			log.Printf("Error handling mention %q: %v", mentioned, err)
			continue
		}

		b.broadcaster.BroadcastRoom(UserRoom(user.ID.String()), models.WebSocketMessage{
			Type: "live_notification",
			Data: gin.H{"message": text, "type": "mention"},
		}, "")
	}
}

func (b *Bridge) handleTyping(c *Client, p TypingPayload, typing bool) {
	b.broadcaster.BroadcastRoom(WorkspaceRoom(p.WorkspaceID), models.WebSocketMessage{
		Type: "user_typing",
		Data: gin.H{"username": p.Username, "typing": typing},
	}, c.ID)
}

func (b *Bridge) handleTaskAssigned(p TaskAssignedPayload) {
	text := fmt.Sprintf("%s assigned you to task: %s", p.AssignedBy, p.TaskTitle)

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	err := b.store.InsertNotification(ctx, &models.Notification{
		UserID:  p.AssignedTo,
		Message: text,
		Type:    "task_assignment",
	})
	if err != nil {
		log.Printf("Error creating notification: %v", err)
	}

	// Best effort: lost silently if the assignee is not subscribed to their
	// notification room right now. The durable row above exists regardless.
	b.broadcaster.BroadcastRoom(UserRoom(p.AssignedTo), models.WebSocketMessage{
		Type: "live_notification",
		Data: gin.H{
			"message":   text,
			"type":      "task_assignment",
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}, "")
}

func (b *Bridge) handleSubscribeNotifications(c *Client, p NotificationSubPayload) {
	b.registry.Join(UserRoom(p.UserID), c.ID, Presence{
		UserID:   p.UserID,
		JoinedAt: time.Now(),
	})
	b.broadcaster.SendToSession(c.ID, models.WebSocketMessage{
		Type: "notifications_subscribed",
		Data: gin.H{"status": "success"},
	})
}

func (b *Bridge) handleUnsubscribeNotifications(c *Client, p NotificationSubPayload) {
	b.registry.Leave(UserRoom(p.UserID), c.ID)
}

func (b *Bridge) broadcastPresence(roomID string) {
	members := b.registry.Members(roomID)
	b.broadcaster.BroadcastRoom(roomID, models.WebSocketMessage{
		Type: "user_presence",
		Data: gin.H{
			"online_count": len(members),
			"users":        members,
		},
	}, "")
}
