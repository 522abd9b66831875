package handlers

import (
	"syncspace-backend/internal/config"
	"syncspace-backend/internal/middleware"
	"syncspace-backend/internal/realtime"
	"syncspace-backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func parseID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

type Handler struct {
	store *store.Store
	hub   *realtime.Hub
	cfg   *config.Config
}

func SetupRoutes(r *gin.RouterGroup, st *store.Store, hub *realtime.Hub, cfg *config.Config) {
	h := &Handler{store: st, hub: hub, cfg: cfg}

	r.GET("/ws", func(c *gin.Context) {
		realtime.HandleWebSocket(c, hub)
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.GET("/me", middleware.RequireAuth(cfg.SecretKey), h.me)
	}

	protected := r.Group("", middleware.RequireAuth(cfg.SecretKey))

	workspace := protected.Group("/workspace")
	{
		workspace.GET("/list", h.listWorkspaces)
		workspace.POST("/create", h.createWorkspace)
		workspace.GET("/:id", h.getWorkspace)
		workspace.PUT("/:id", h.updateWorkspace)
		workspace.DELETE("/:id", h.deleteWorkspace)
		workspace.GET("/:id/members", h.listWorkspaceMembers)
		workspace.POST("/:id/members", h.addWorkspaceMember)
		workspace.PUT("/:id/members/:userId", h.updateWorkspaceMemberRole)
		workspace.DELETE("/:id/members/:userId", h.removeWorkspaceMember)
	}

	project := protected.Group("/project")
	{
		project.POST("/create", h.createProject)
		project.GET("/list/:workspaceId", h.listProjects)
		project.GET("/:id", h.getProject)
		project.PUT("/:id", h.updateProject)
		project.DELETE("/:id", h.deleteProject)
	}

	kanban := protected.Group("/kanban")
	{
		kanban.GET("/:workspaceId", h.getKanban)
		kanban.POST("/task", h.createTask)
		kanban.PUT("/task/:id", h.updateTask)
		kanban.DELETE("/task/:id", h.deleteTask)
	}

	document := protected.Group("/document")
	{
		document.POST("/create", h.createDocument)
		document.GET("/list/:workspaceId", h.listDocuments)
		document.GET("/:id", h.getDocument)
		document.PUT("/:id", h.updateDocument)
		document.DELETE("/:id", h.deleteDocument)
	}

	chat := protected.Group("/chat")
	{
		chat.GET("/:workspaceId/messages", h.getMessages)
		chat.POST("/message", h.sendMessage)
		chat.DELETE("/message/:id", h.deleteMessage)
	}

	files := protected.Group("/files")
	{
		files.POST("/upload", h.uploadFileMeta)
		files.GET("/list/:workspaceId", h.listFiles)
		files.DELETE("/:id", h.deleteFileMeta)
	}

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", h.getNotifications)
		notifications.PUT("/read", h.markNotificationsRead)
		notifications.DELETE("", h.clearNotifications)
		notifications.DELETE("/:id", h.deleteNotification)
		notifications.POST("/create", h.createNotification)
	}
}
