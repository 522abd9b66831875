package handlers

import (
	"errors"
	"log"
	"net/http"

	"syncspace-backend/internal/models"
	"syncspace-backend/internal/store"

	"github.com/gin-gonic/gin"
)

const notificationListLimit = 50

func (h *Handler) getNotifications(c *gin.Context) {
	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	notifications, err := h.store.ListNotifications(ctx, userID, notificationListLimit)
	if err != nil {
		log.Printf("Error getting notifications: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get notifications"})
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	unread, err := h.store.CountUnreadNotifications(ctx, userID)
	if err != nil {
		log.Printf("Error counting unread notifications: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

func (h *Handler) markNotificationsRead(c *gin.Context) {
	if err := h.store.MarkNotificationsRead(c.Request.Context(), c.GetString("user_id")); err != nil {
		log.Printf("Error marking notifications as read: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications as read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read"})
}

func (h *Handler) clearNotifications(c *gin.Context) {
	if err := h.store.ClearNotifications(c.Request.Context(), c.GetString("user_id")); err != nil {
		log.Printf("Error clearing notifications: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications cleared"})
}

func (h *Handler) deleteNotification(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	err = h.store.DeleteNotification(c.Request.Context(), id, c.GetString("user_id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	if err != nil {
		log.Printf("Error deleting notification: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

type createNotificationRequest struct {
	TargetUserID string  `json:"target_user_id" binding:"required"`
	Message      string  `json:"message" binding:"required"`
	Type         string  `json:"type"`
	WorkspaceID  *string `json:"workspace_id"`
}

func (h *Handler) createNotification(c *gin.Context) {
	var req createNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_user_id and message are required"})
		return
	}
	if req.Type == "" {
		req.Type = "info"
	}

	notification := &models.Notification{
		UserID:      req.TargetUserID,
		Message:     req.Message,
		Type:        req.Type,
		WorkspaceID: req.WorkspaceID,
	}
	if err := h.store.InsertNotification(c.Request.Context(), notification); err != nil {
		log.Printf("Error creating notification: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Notification created",
		"notification_id": notification.ID,
	})
}
