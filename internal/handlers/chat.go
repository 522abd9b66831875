package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"syncspace-backend/internal/models"
	"syncspace-backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const chatHistoryLimit = 100

func (h *Handler) getMessages(c *gin.Context) {
	messages, err := h.store.ListChatMessages(c.Request.Context(), c.Param("workspaceId"), chatHistoryLimit)
	if err != nil {
		log.Printf("Error getting messages: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get messages"})
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	c.JSON(http.StatusOK, messages)
}

type sendMessageRequest struct {
	WorkspaceID string `json:"workspace_id" binding:"required"`
	Message     string `json:"message" binding:"required"`
	Username    string `json:"username"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace_id and message are required"})
		return
	}

	username := req.Username
	if username == "" {
		username = c.GetString("user_name")
	}

	msg := &models.ChatMessage{
		ID:          uuid.New(),
		WorkspaceID: req.WorkspaceID,
		UserID:      c.GetString("user_id"),
		Username:    username,
		Message:     req.Message,
		Timestamp:   time.Now(),
	}
	if err := h.store.InsertChatMessage(c.Request.Context(), msg); err != nil {
		log.Printf("Error sending message: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) deleteMessage(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	err = h.store.DeleteChatMessage(c.Request.Context(), id, c.GetString("user_id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}
	if errors.Is(err, store.ErrPermissionDenied) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return
	}
	if err != nil {
		log.Printf("Error deleting message: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}
