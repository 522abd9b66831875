package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"syncspace-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one live connection. Its ID is the session id: generated on
// upgrade, unrelated to any application user identity.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub
}

// Hub owns the set of connected clients and fans events out to rooms. Room
// membership lives in the Registry; the hub maps session ids back to
// connections at broadcast time.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	registry *Registry
	bridge   *Bridge

	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub(registry *Registry, store Store) *Hub {
	h := &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		registry:   registry,
		clients:    make(map[string]*Client),
	}
	h.bridge = NewBridge(h, registry, store)
	return h
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

			h.SendToSession(client.ID, models.WebSocketMessage{
				Type: "connected",
				Data: gin.H{"data": "Connected to SyncSpace", "sid": client.ID},
			})
			log.Printf("Client connected: %s", client.ID)

		case client := <-h.Unregister:
			h.removeClient(client)
			h.cleanupSession(client.ID)
			log.Printf("Client disconnected: %s", client.ID)
		}
	}
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		close(c.Send)
	}
}

// cleanupSession drops the session from every room it was in. Workspace
// rooms get a departure event and a fresh presence snapshot; document rooms
// get nothing here, and their durable active-editor entries are only removed
// by an explicit leave_document.
func (h *Hub) cleanupSession(sessionID string) {
	for _, m := range h.registry.RemoveSession(sessionID) {
		if !isWorkspaceRoom(m.RoomID) {
			continue
		}
		h.BroadcastRoom(m.RoomID, models.WebSocketMessage{
			Type: "user_left",
			Data: gin.H{
				"username":     m.Presence.Username,
				"workspace_id": workspaceFromRoom(m.RoomID),
			},
		}, "")
		h.broadcastPresence(m.RoomID)
	}
}

// broadcastPresence pushes the full membership snapshot for a room. The
// snapshot replaces any deltas a client may have missed.
func (h *Hub) broadcastPresence(roomID string) {
	members := h.registry.Members(roomID)
	h.BroadcastRoom(roomID, models.WebSocketMessage{
		Type: "user_presence",
		Data: gin.H{
			"online_count": len(members),
			"users":        members,
		},
	}, "")
}

// BroadcastRoom delivers the message to every session currently in the room,
// optionally skipping the originating session. Sends never block: a client
// whose buffer is full is dropped and will be cleaned up by its own pumps.
func (h *Hub) BroadcastRoom(roomID string, msg models.WebSocketMessage, excludeSession string) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", msg.Type, err)
		return
	}

	sessions := h.registry.Sessions(roomID)

	h.mu.RLock()
	targets := make([]*Client, 0, len(sessions))
	for _, sid := range sessions {
		if sid == excludeSession {
			continue
		}
		if client, ok := h.clients[sid]; ok {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		select {
		case client.Send <- data:
		default:
			h.removeClient(client)
		}
	}
}

// SendToSession delivers the message to a single session, if connected.
func (h *Hub) SendToSession(sessionID string, msg models.WebSocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", msg.Type, err)
		return
	}

	h.mu.RLock()
	client, ok := h.clients[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case client.Send <- data:
	default:
		h.removeClient(client)
	}
}

func HandleWebSocket(c *gin.Context, hub *Hub) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, 256),
		Hub:  hub,
	}

	hub.Register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(64 * 1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			log.Printf("Dropping malformed frame from %s: %v", c.ID, err)
			continue
		}

		c.Hub.bridge.Dispatch(c, env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
