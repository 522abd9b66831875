package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"syncspace-backend/internal/models"
	"syncspace-backend/internal/store"

	"github.com/gin-gonic/gin"
)

type createWorkspaceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *Handler) listWorkspaces(c *gin.Context) {
	workspaces, err := h.store.ListWorkspacesForUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		log.Printf("Error listing workspaces: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list workspaces"})
		return
	}
	if workspaces == nil {
		workspaces = []models.Workspace{}
	}
	c.JSON(http.StatusOK, gin.H{"workspaces": workspaces})
}

func (h *Handler) createWorkspace(c *gin.Context) {
	var req createWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Workspace name is required"})
		return
	}

	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	id, err := parseID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	creator, err := h.store.FindUserByID(ctx, id)
	if err != nil || creator == nil {
		log.Printf("Error loading workspace creator: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workspace"})
		return
	}

	workspace := &models.Workspace{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   userID,
	}
	if err := h.store.CreateWorkspace(ctx, workspace, creator); err != nil {
		log.Printf("Error creating workspace: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workspace"})
		return
	}

	c.JSON(http.StatusCreated, workspace)
}

func (h *Handler) getWorkspace(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid workspace ID"})
		return
	}

	workspace, err := h.store.GetWorkspace(c.Request.Context(), id, c.GetString("user_id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		return
	}
	if err != nil {
		log.Printf("Error getting workspace: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get workspace"})
		return
	}

	c.JSON(http.StatusOK, workspace)
}

func (h *Handler) updateWorkspace(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid workspace ID"})
		return
	}

	var req createWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err = h.store.UpdateWorkspace(c.Request.Context(), id, req.Name, req.Description)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		return
	}
	if err != nil {
		log.Printf("Error updating workspace: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update workspace"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Workspace updated"})
}

func (h *Handler) deleteWorkspace(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid workspace ID"})
		return
	}

	if err := h.store.DeleteWorkspace(c.Request.Context(), id); err != nil {
		log.Printf("Error deleting workspace: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete workspace"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Workspace deleted"})
}

type addMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

func (h *Handler) addWorkspaceMember(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid workspace ID"})
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	if req.Role == "" {
		req.Role = "member"
	}

	member := models.WorkspaceMember{
		WorkspaceID: id,
		UserID:      req.UserID,
		Email:       req.Email,
		Name:        req.Name,
		Role:        req.Role,
		JoinedAt:    time.Now(),
	}
	if err := h.store.AddWorkspaceMember(c.Request.Context(), member); err != nil {
		log.Printf("Error adding workspace member: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	c.JSON(http.StatusCreated, member)
}

func (h *Handler) listWorkspaceMembers(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid workspace ID"})
		return
	}

	members, err := h.store.ListWorkspaceMembers(c.Request.Context(), id)
	if err != nil {
		log.Printf("Error listing workspace members: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list members"})
		return
	}
	if members == nil {
		members = []models.WorkspaceMember{}
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (h *Handler) removeWorkspaceMember(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid workspace ID"})
		return
	}

	err = h.store.RemoveWorkspaceMember(c.Request.Context(), id, c.Param("userId"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}
	if err != nil {
		log.Printf("Error removing workspace member: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

type updateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *Handler) updateWorkspaceMemberRole(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid workspace ID"})
		return
	}

	var req updateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}

	err = h.store.UpdateWorkspaceMemberRole(c.Request.Context(), id, c.Param("userId"), req.Role)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}
	if err != nil {
		log.Printf("Error updating member role: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update member role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member role updated"})
}
