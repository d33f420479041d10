package api

import (
	"errors"
	"net/http"

	"selapp/internal/model"
	"selapp/internal/repository"
	"selapp/internal/service"
	"selapp/pkg/auth"
	"selapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type pushRoutes struct {
	ns        service.NotificationServiceI
	a         *auth.JWTAuth
	publicKey string
}

// NewPushRoutes registers push-subscription management. publicKey may
// be empty when push is not configured; the key endpoint then 404s.
func NewPushRoutes(handler *gin.RouterGroup, ns service.NotificationServiceI, a *auth.JWTAuth, publicKey string) {
	r := &pushRoutes{ns: ns, a: a, publicKey: publicKey}
	h := handler.Group("/push")
	h.GET("/key", r.PublicKey)

	authed := h.Group("")
	authed.Use(a.AuthMiddleware())
	{
		authed.POST("/subscribe", r.Subscribe)
		authed.DELETE("/subscribe", r.Unsubscribe)
		authed.POST("/reset", r.Reset)
	}
}

type SubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

func (r *pushRoutes) PublicKey(c *gin.Context) {
	if r.publicKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "push is not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": r.publicKey})
}

func (r *pushRoutes) Subscribe(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint and keys are required"})
		return
	}

	err := r.ns.Subscribe(c.Request.Context(), &model.PushSubscription{
		UserID:   userID,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	})
	if err != nil {
		log.Error("failed to save push subscription", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *pushRoutes) Unsubscribe(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	endpoint := c.Query("endpoint")
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	err := r.ns.Unsubscribe(c.Request.Context(), userID, endpoint)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
			return
		}
		log.Error("failed to delete push subscription", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *pushRoutes) Reset(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	deleted, err := r.ns.ResetSubscriptions(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to reset push subscriptions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset subscriptions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted_count": deleted})
}
