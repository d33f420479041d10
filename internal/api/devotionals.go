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
)

type devotionalRoutes struct {
	ds          service.DevotionalServiceI
	a           *auth.JWTAuth
	ingestToken string
}

// NewDevotionalRoutes serves devotionals to signed-in users and takes
// ingest posts from the external generator webhook guarded by a shared
// token.
func NewDevotionalRoutes(handler *gin.RouterGroup, ds service.DevotionalServiceI, a *auth.JWTAuth, ingestToken string) {
	r := &devotionalRoutes{ds: ds, a: a, ingestToken: ingestToken}
	h := handler.Group("/devotionals")
	h.Use(a.AuthMiddleware())
	{
		h.GET("", r.List)
		h.GET("/today", r.Today)
	}

	handler.POST("/webhooks/devotionals", r.Ingest)
}

type DevotionalResponse struct {
	ID             string    `json:"id"`
	Date           time.Time `json:"date"`
	Title          string    `json:"title"`
	Theme          string    `json:"theme"`
	VerseReference string    `json:"verse_reference"`
	VerseText      string    `json:"verse_text"`
	Reflection     string    `json:"reflection"`
}

func devotionalResponse(d *model.Devotional) DevotionalResponse {
	return DevotionalResponse{
		ID:             d.ID.String(),
		Date:           d.Date,
		Title:          d.Title,
		Theme:          d.Theme,
		VerseReference: d.VerseReference,
		VerseText:      d.VerseText,
		Reflection:     d.Reflection,
	}
}

func (r *devotionalRoutes) List(c *gin.Context) {
	log := logger.Logger()

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	devotionals, err := r.ds.List(c.Request.Context(), limit)
	if err != nil {
		log.Error("failed to list devotionals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list devotionals"})
		return
	}

	out := make([]DevotionalResponse, len(devotionals))
	for i, d := range devotionals {
		out[i] = devotionalResponse(d)
	}

	c.JSON(http.StatusOK, gin.H{"devotionals": out})
}

func (r *devotionalRoutes) Today(c *gin.Context) {
	log := logger.Logger()

	d, err := r.ds.Today(c.Request.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no devotional for today"})
			return
		}
		log.Error("failed to get today's devotional", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get devotional"})
		return
	}

	c.JSON(http.StatusOK, devotionalResponse(d))
}

type IngestDevotionalRequest struct {
	Date           string `json:"date"`
	Title          string `json:"title" binding:"required"`
	Theme          string `json:"theme"`
	VerseReference string `json:"verse_reference" binding:"required"`
	VerseText      string `json:"verse_text"`
	Reflection     string `json:"reflection"`
}

func (r *devotionalRoutes) Ingest(c *gin.Context) {
	log := logger.Logger()

	if r.ingestToken == "" || c.GetHeader("X-Webhook-Token") != r.ingestToken {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req IngestDevotionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	d := &model.Devotional{
		Title:          req.Title,
		Theme:          req.Theme,
		VerseReference: req.VerseReference,
		VerseText:      req.VerseText,
		Reflection:     req.Reflection,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		d.Date = date
	}

	err := r.ds.Ingest(c.Request.Context(), d)
	if err != nil {
		if errors.Is(err, service.ErrDevotionalExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "devotional already exists for this date"})
			return
		}
		log.Error("failed to ingest devotional", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest devotional"})
		return
	}

	c.JSON(http.StatusCreated, devotionalResponse(d))
}
