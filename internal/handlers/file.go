package handlers

import (
	"errors"
	"log"
	"net/http"

	"syncspace-backend/internal/models"
	"syncspace-backend/internal/store"

	"github.com/gin-gonic/gin"
)

// File handlers track metadata only; the bytes live in external object
// storage managed outside this service.

type uploadFileRequest struct {
	WorkspaceID string `json:"workspace_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

func (h *Handler) uploadFileMeta(c *gin.Context) {
	var req uploadFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace_id and name are required"})
		return
	}

	file := &models.FileMeta{
		WorkspaceID: req.WorkspaceID,
		Name:        req.Name,
		Size:        req.Size,
		ContentType: req.ContentType,
		UploadedBy:  c.GetString("user_id"),
	}
	if err := h.store.CreateFileMeta(c.Request.Context(), file); err != nil {
		log.Printf("Error saving file metadata: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	c.JSON(http.StatusCreated, file)
}

func (h *Handler) listFiles(c *gin.Context) {
	files, err := h.store.ListFiles(c.Request.Context(), c.Param("workspaceId"))
	if err != nil {
		log.Printf("Error listing files: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list files"})
		return
	}
	if files == nil {
		files = []models.FileMeta{}
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (h *Handler) deleteFileMeta(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file ID"})
		return
	}

	err = h.store.DeleteFileMeta(c.Request.Context(), id, c.GetString("user_id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	if err != nil {
		log.Printf("Error deleting file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
}
