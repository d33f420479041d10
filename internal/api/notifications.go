package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"selapp/internal/model"
	"selapp/internal/repository"
	"selapp/internal/service"
	"selapp/pkg/auth"
	"selapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type notificationRoutes struct {
	ns service.NotificationServiceI
	a  *auth.JWTAuth
}

func NewNotificationRoutes(handler *gin.RouterGroup, ns service.NotificationServiceI, a *auth.JWTAuth) {
	r := &notificationRoutes{ns: ns, a: a}
	h := handler.Group("/notifications")
	h.Use(a.AuthMiddleware())
	{
		h.GET("", r.List)
		h.POST("", r.Create)
		h.PATCH("", r.MarkRead)
		// bulk delete targets only already-read notifications
		h.DELETE("", r.DeleteRead)
		h.DELETE("/:id", r.Delete)
	}
}

type NotificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Icon      string    `json:"icon,omitempty"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func notificationResponse(n *model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID.String(),
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Icon:      n.Icon,
		Link:      n.Link,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func (r *notificationRoutes) List(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	unreadOnly := c.Query("unread_only") == "true"
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	notifications, unreadCount, err := r.ns.Notifications(c.Request.Context(), userID, unreadOnly, limit)
	if err != nil {
		log.Error("failed to get notifications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get notifications"})
		return
	}

	out := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		out[i] = notificationResponse(n)
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": out,
		"unread_count":  unreadCount,
	})
}

type CreateNotificationRequest struct {
	Type    string `json:"type"`
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
	Icon    string `json:"icon"`
	Link    string `json:"link"`
}

func (r *notificationRoutes) Create(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and message are required"})
		return
	}

	n, err := r.ns.CreateCustom(c.Request.Context(), userID, service.Template{
		Type:    model.NotificationType(req.Type),
		Title:   req.Title,
		Message: req.Message,
		Icon:    req.Icon,
		Link:    req.Link,
	})
	if err != nil {
		log.Error("failed to create notification", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create notification"})
		return
	}

	c.JSON(http.StatusCreated, notificationResponse(n))
}

type MarkReadRequest struct {
	NotificationIDs []string `json:"notification_ids"`
	MarkAllAsRead   bool     `json:"mark_all_as_read"`
}

func (r *notificationRoutes) MarkRead(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var ids []uuid.UUID
	if !req.MarkAllAsRead {
		if len(req.NotificationIDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "notification_ids is required unless mark_all_as_read"})
			return
		}
		ids = make([]uuid.UUID, len(req.NotificationIDs))
		for i, raw := range req.NotificationIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
				return
			}
			ids[i] = id
		}
	}

	err := r.ns.MarkRead(c.Request.Context(), userID, ids)
	if err != nil {
		log.Error("failed to mark notifications read", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notifications read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *notificationRoutes) Delete(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	err = r.ns.Delete(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		log.Error("failed to delete notification", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *notificationRoutes) DeleteRead(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	deleted, err := r.ns.DeleteRead(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to delete read notifications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete read notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted_count": deleted})
}
