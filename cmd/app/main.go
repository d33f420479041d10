package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"selapp/internal/api"
	"selapp/internal/repository"
	"selapp/internal/scheduler"
	"selapp/internal/service"
	"selapp/pkg/auth"
	"selapp/pkg/logger"
	"selapp/pkg/webpush"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultTokenTTL = 30 * 24 * time.Hour

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	tokenTTL := defaultTokenTTL
	if cfg.Auth.TokenTTL != "" {
		tokenTTL, err = time.ParseDuration(cfg.Auth.TokenTTL)
		if err != nil {
			zapLogger.Fatal("Invalid token TTL", zap.Error(err))
		}
	}
	jwtAuth := auth.NewJWTAuth(cfg.Auth.JWTSecret, tokenTTL)

	var pushSender service.PushSender
	var vapidPublicKey string
	sender, err := webpush.NewSender(cfg.Push)
	if err != nil {
		zapLogger.Warn("Push delivery disabled", zap.Error(err))
	} else {
		pushSender = sender
		vapidPublicKey = sender.PublicKey()
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	corsConfig.AllowHeaders = []string{"*"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	a := router.Group("/api/v1")

	feed := api.NewFeed(a, jwtAuth, cfg.Server.AllowedOrigins)

	userService := service.NewUserService(repo)
	readingService := service.NewReadingService(repo)
	diaryService := service.NewDiaryService(repo)
	devotionalService := service.NewDevotionalService(repo)
	notificationService := service.NewNotificationService(repo, pushSender, feed)

	api.NewUserRoutes(a, userService, jwtAuth)
	api.NewReadingRoutes(a, readingService, jwtAuth)
	api.NewDiaryRoutes(a, diaryService, jwtAuth)
	api.NewDevotionalRoutes(a, devotionalService, jwtAuth, cfg.DevotionalWebhookToken)
	api.NewNotificationRoutes(a, notificationService, jwtAuth)
	api.NewPushRoutes(a, notificationService, jwtAuth, vapidPublicKey)
	api.NewCronRoutes(a, notificationService, cfg.CronSecret)
	api.NewAdminRoutes(a, notificationService, userService, jwtAuth)

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(cfg.Scheduler, notificationService)
		if err != nil {
			zapLogger.Fatal("Failed to initialize scheduler", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
