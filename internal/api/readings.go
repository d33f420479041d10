package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"selapp/internal/model"
	"selapp/internal/service"
	"selapp/pkg/auth"
	"selapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type readingRoutes struct {
	rs service.ReadingServiceI
	a  *auth.JWTAuth
}

func NewReadingRoutes(handler *gin.RouterGroup, rs service.ReadingServiceI, a *auth.JWTAuth) {
	r := &readingRoutes{rs: rs, a: a}
	h := handler.Group("/readings")
	h.Use(a.AuthMiddleware())
	{
		h.POST("", r.MarkToday)
		h.GET("", r.History)
		h.GET("/stats", r.Stats)
	}
}

type MarkReadingRequest struct {
	Passage string `json:"passage" binding:"required"`
}

type ReadingResponse struct {
	ID      string    `json:"id"`
	Date    time.Time `json:"date"`
	Passage string    `json:"passage"`
	Seeds   int       `json:"seeds"`
}

type LevelResponse struct {
	Level         int    `json:"level"`
	Name          string `json:"name"`
	Icon          string `json:"icon"`
	SeedsRequired int    `json:"seeds_required"`
	Description   string `json:"description"`
}

type ReadingStatsResponse struct {
	TotalDays          int            `json:"total_days"`
	TotalSeeds         int            `json:"total_seeds"`
	CurrentStreak      int            `json:"current_streak"`
	MaxStreak          int            `json:"max_streak"`
	ReadToday          bool           `json:"read_today"`
	CurrentLevel       LevelResponse  `json:"current_level"`
	NextLevel          *LevelResponse `json:"next_level"`
	SeedsToNextLevel   int            `json:"seeds_to_next_level"`
	ProgressPercentage float64        `json:"progress_percentage"`
}

func levelResponse(l model.Level) LevelResponse {
	return LevelResponse{
		Level:         l.Level,
		Name:          l.Name,
		Icon:          l.Icon,
		SeedsRequired: l.SeedsRequired,
		Description:   l.Description,
	}
}

func (r *readingRoutes) MarkToday(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req MarkReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "passage is required"})
		return
	}

	reading, err := r.rs.MarkToday(c.Request.Context(), userID, req.Passage)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyMarkedToday) {
			c.JSON(http.StatusConflict, gin.H{"error": "reading already marked today"})
			return
		}
		log.Error("failed to mark reading", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark reading"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "¡Lectura registrada! +10 Semillas 🌱",
		"reading": ReadingResponse{
			ID:      reading.ID.String(),
			Date:    reading.Date,
			Passage: reading.Passage,
			Seeds:   reading.Seeds,
		},
	})
}

func (r *readingRoutes) History(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	readings, err := r.rs.History(c.Request.Context(), userID, limit)
	if err != nil {
		log.Error("failed to get readings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get readings"})
		return
	}

	out := make([]ReadingResponse, len(readings))
	for i, reading := range readings {
		out[i] = ReadingResponse{
			ID:      reading.ID.String(),
			Date:    reading.Date,
			Passage: reading.Passage,
			Seeds:   reading.Seeds,
		}
	}

	c.JSON(http.StatusOK, gin.H{"readings": out})
}

func (r *readingRoutes) Stats(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	stats, err := r.rs.Stats(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to get reading stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get reading stats"})
		return
	}

	response := ReadingStatsResponse{
		TotalDays:          stats.TotalDays,
		TotalSeeds:         stats.TotalSeeds,
		CurrentStreak:      stats.CurrentStreak,
		MaxStreak:          stats.MaxStreak,
		ReadToday:          stats.ReadToday,
		CurrentLevel:       levelResponse(stats.CurrentLevel),
		SeedsToNextLevel:   stats.SeedsToNextLevel,
		ProgressPercentage: stats.ProgressPercentage,
	}
	if stats.NextLevel != nil {
		next := levelResponse(*stats.NextLevel)
		response.NextLevel = &next
	}

	c.JSON(http.StatusOK, response)
}
