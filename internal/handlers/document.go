package handlers

import (
	"errors"
	"log"
	"net/http"

	"syncspace-backend/internal/models"
	"syncspace-backend/internal/store"

	"github.com/gin-gonic/gin"
)

type createDocumentRequest struct {
	WorkspaceID string `json:"workspace_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content"`
}

func (h *Handler) createDocument(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and workspace_id are required"})
		return
	}

	doc := &models.Document{
		WorkspaceID: req.WorkspaceID,
		Title:       req.Title,
		Content:     req.Content,
		CreatedBy:   c.GetString("user_id"),
	}
	if err := h.store.CreateDocument(c.Request.Context(), doc); err != nil {
		log.Printf("Error creating document: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document"})
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) listDocuments(c *gin.Context) {
	documents, err := h.store.ListDocuments(c.Request.Context(), c.Param("workspaceId"))
	if err != nil {
		log.Printf("Error listing documents: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documents"})
		return
	}
	if documents == nil {
		documents = []models.Document{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

func (h *Handler) getDocument(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
		return
	}

	doc, err := h.store.GetDocument(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}
	if err != nil {
		log.Printf("Error retrieving document: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve document"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

type updateDocumentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) updateDocument(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
		return
	}

	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err = h.store.UpdateDocumentContent(c.Request.Context(), id, req.Content)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}
	if err != nil {
		log.Printf("Error updating document: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) deleteDocument(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
		return
	}

	if err := h.store.DeleteDocument(c.Request.Context(), id); err != nil {
		log.Printf("Error deleting document: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}
