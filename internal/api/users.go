package api

import (
	"errors"
	"net/http"
	"time"

	"selapp/internal/service"
	"selapp/pkg/auth"
	"selapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type userRoutes struct {
	us service.UserServiceI
	a  *auth.JWTAuth
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, a *auth.JWTAuth) {
	r := &userRoutes{us: us, a: a}
	h := handler.Group("/auth")
	{
		h.POST("/register", r.Register)
		h.POST("/login", r.Login)
	}

	me := handler.Group("/me")
	me.Use(a.AuthMiddleware())
	{
		me.GET("", r.Me)
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	RegistrationDate time.Time `json:"registration_date"`
}

func (r *userRoutes) Register(c *gin.Context) {
	log := logger.Logger()

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := r.us.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		log.Error("failed to register user", zap.Error(err))
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		return
	}

	token, err := r.a.GenerateToken(user.ID)
	if err != nil {
		log.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Token: token,
		User: UserResponse{
			ID:               user.ID.String(),
			Email:            user.Email,
			Name:             user.Name,
			RegistrationDate: user.RegistrationDate,
		},
	})
}

func (r *userRoutes) Login(c *gin.Context) {
	log := logger.Logger()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := r.us.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		log.Error("failed to login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to login"})
		return
	}

	token, err := r.a.GenerateToken(user.ID)
	if err != nil {
		log.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: token,
		User: UserResponse{
			ID:               user.ID.String(),
			Email:            user.Email,
			Name:             user.Name,
			RegistrationDate: user.RegistrationDate,
		},
	})
}

func (r *userRoutes) Me(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		log.Error("user id not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	user, err := r.us.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to get user", zap.Error(err))
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		ID:               user.ID.String(),
		Email:            user.Email,
		Name:             user.Name,
		RegistrationDate: user.RegistrationDate,
	})
}
