package api

import (
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

type diaryRoutes struct {
	ds service.DiaryServiceI
	a  *auth.JWTAuth
}

func NewDiaryRoutes(handler *gin.RouterGroup, ds service.DiaryServiceI, a *auth.JWTAuth) {
	r := &diaryRoutes{ds: ds, a: a}
	h := handler.Group("/diary")
	h.Use(a.AuthMiddleware())
	{
		h.POST("", r.CreateEntry)
		h.GET("", r.Entries)
	}
}

type CreateDiaryEntryRequest struct {
	Title   string `json:"title"`
	Content string `json:"content" binding:"required"`
	Mood    string `json:"mood"`
}

type DiaryEntryResponse struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *diaryRoutes) CreateEntry(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req CreateDiaryEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	entry := &model.DiaryEntry{
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
		Mood:    req.Mood,
	}

	err := r.ds.CreateEntry(c.Request.Context(), entry)
	if err != nil {
		log.Error("failed to create diary entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create diary entry"})
		return
	}

	c.JSON(http.StatusCreated, DiaryEntryResponse{
		ID:        entry.ID.String(),
		Date:      entry.Date,
		Title:     entry.Title,
		Content:   entry.Content,
		Mood:      entry.Mood,
		CreatedAt: entry.CreatedAt,
	})
}

func (r *diaryRoutes) Entries(c *gin.Context) {
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

	entries, err := r.ds.Entries(c.Request.Context(), userID, limit)
	if err != nil {
		log.Error("failed to get diary entries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get diary entries"})
		return
	}

	out := make([]DiaryEntryResponse, len(entries))
	for i, entry := range entries {
		out[i] = DiaryEntryResponse{
			ID:        entry.ID.String(),
			Date:      entry.Date,
			Title:     entry.Title,
			Content:   entry.Content,
			Mood:      entry.Mood,
			CreatedAt: entry.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{"entries": out})
}
