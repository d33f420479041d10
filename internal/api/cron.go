package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"selapp/internal/service"
	"selapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

// cronRoutes exposes the scheduled fan-out tasks over HTTP for an
// external cron runner, behind a shared-secret bearer check.
type cronRoutes struct {
	ns     service.NotificationServiceI
	secret string
}

func NewCronRoutes(handler *gin.RouterGroup, ns service.NotificationServiceI, secret string) {
	r := &cronRoutes{ns: ns, secret: secret}
	h := handler.Group("/cron")
	h.Use(r.secretMiddleware())
	{
		h.POST("/run", r.RunTask)
	}
}

func (r *cronRoutes) secretMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		if r.secret == "" {
			log.Error("cron secret is not configured")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "cron trigger is not configured"})
			return
		}

		got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(r.secret)) != 1 {
			log.Info("rejected cron trigger with bad secret")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Next()
	}
}

func (r *cronRoutes) RunTask(c *gin.Context) {
	log := logger.Logger()

	task := c.Query("task")
	if task == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "task is required",
			"available_tasks": []string{
				service.TaskVerseOfDay,
				service.TaskReadingReminder,
				service.TaskDiaryReminder,
				service.TaskCheckStreaks,
				service.TaskNightReminders,
				service.TaskAll,
			},
		})
		return
	}

	message, err := r.ns.RunTask(c.Request.Context(), task)
	if err != nil {
		if errors.Is(err, service.ErrUnknownTask) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown task"})
			return
		}
		log.Error("cron task failed", zap.String("task", task), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "task failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}
