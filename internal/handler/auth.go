package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/service"
)

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Verify(c *gin.Context)
	UpdateProfile(c *gin.Context)
}

type authHandler struct {
	auth   service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth service.AuthService, logger *zap.Logger) AuthHandler {
	return &authHandler{auth: auth, logger: logger}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// Register handles POST /api/auth/register.
func (h *authHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	user, signed, err := h.auth.Register(req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User already exists"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		default:
			h.logger.Error("Failed to register user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		}
		return
	}

	metrics.RegistrationsTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "token": signed, "user": user})
}

// Login handles POST /api/auth/login.
func (h *authHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	user, signed, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid credentials"})
			return
		}
		h.logger.Error("Failed to login user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	metrics.LoginsTotal.WithLabelValues("accepted").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "token": signed, "user": user})
}

// Verify handles GET /api/auth/verify. It re-reads the user row, so a user
// deleted after issuance is reported as missing even with a valid token.
func (h *authHandler) Verify(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Invalid token"})
		return
	}

	user, err := h.auth.GetProfile(principal.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		h.logger.Error("Failed to load user profile", zap.Int64("id", principal.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// UpdateProfile handles PUT /api/auth/profile.
func (h *authHandler) UpdateProfile(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Invalid token"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	user, err := h.auth.UpdateProfile(principal.ID, req.Name, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		h.logger.Error("Failed to update profile", zap.Int64("id", principal.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
