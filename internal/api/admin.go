package api

import (
	"net/http"

	"selapp/internal/middleware"
	"selapp/internal/model"
	"selapp/internal/service"
	"selapp/pkg/auth"
	"selapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type adminRoutes struct {
	ns service.NotificationServiceI
}

// NewAdminRoutes registers operations reserved for admin users, such
// as broadcasting a custom notification to every user.
func NewAdminRoutes(handler *gin.RouterGroup, ns service.NotificationServiceI, us service.UserServiceI, a *auth.JWTAuth) {
	r := &adminRoutes{ns: ns}
	authz := middleware.NewAuthorization(us)

	h := handler.Group("/admin")
	h.Use(a.AuthMiddleware(), authz.AdminOnly())
	{
		h.POST("/broadcast", r.Broadcast)
	}
}

type BroadcastRequest struct {
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
	Icon    string `json:"icon"`
	Link    string `json:"link"`
}

func (r *adminRoutes) Broadcast(c *gin.Context) {
	log := logger.Logger()

	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and message are required"})
		return
	}

	count, err := r.ns.NotifyCohort(c.Request.Context(), service.CohortAllUsers, service.Template{
		Type:    model.NotificationCustom,
		Title:   req.Title,
		Message: req.Message,
		Icon:    req.Icon,
		Link:    req.Link,
	})
	if err != nil {
		log.Error("failed to broadcast notification", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to broadcast notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "notified_users": count})
}
