// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/StudyDeckHQ/studydeck-go/internal/application/services"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/presentation/http/middleware"
)

// AuthHandlers contains all authentication and session HTTP handlers
type AuthHandlers struct {
	authService    *services.AuthService
	sessionService *services.SessionService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(authService *services.AuthService, sessionService *services.SessionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthHandlers {
	return &AuthHandlers{
		authService:    authService,
		sessionService: sessionService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// PostGuest handles POST /api/v1/auth/guest - creates a fresh guest user
func (h *AuthHandlers) PostGuest(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_guest_request", "")
	defer marker.Complete()

	user, err := h.sessionService.CreateGuestUser(c.Request.Context())
	if err != nil {
		h.logger.Session().Error("Guest creation failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create guest session"})
		return
	}

	token, err := h.sessionService.IssueToken(user.ID, "", true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue session token"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, gin.H{
		"user":  user,
		"token": token,
	})
}

// GetGuestSession handles GET /api/v1/auth/guest - resolves the last guest session
func (h *AuthHandlers) GetGuestSession(c *gin.Context) {
	user, err := h.sessionService.GetGuestSession(c.Request.Context())
	if err != nil {
		h.logger.Session().Error("Guest session lookup failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve guest session"})
		return
	}
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}

	token, err := h.sessionService.IssueToken(user.ID, "", true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue session token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

// PostSession handles POST /api/v1/auth/session - establishes an
// authenticated session from a verified identity, folding in guest data
// when a guest id accompanies the sign-in.
func (h *AuthHandlers) PostSession(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_session_request", "")
	defer marker.Complete()

	var req services.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	result, err := h.authService.EstablishSession(c.Request.Context(), &req)
	if err != nil {
		h.logger.Auth().Error("Session establishment failed", "userId", req.UserID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to establish session"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, result)
}

// GetStatus handles GET /api/v1/auth/status - reports the resolved session
func (h *AuthHandlers) GetStatus(c *gin.Context) {
	sess, ok := middleware.GetSessionContext(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"guest":         sess.Guest,
		"userId":        sess.UserID,
	})
}

// PostLogout handles POST /api/v1/auth/logout. Session tokens are
// stateless, so the server only forgets the last guest session pointer.
func (h *AuthHandlers) PostLogout(c *gin.Context) {
	if err := h.sessionService.ClearSession(c.Request.Context()); err != nil {
		h.logger.Session().Error("Failed to clear session pointer", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// AdminLoginRequest carries the operator password.
type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// PostAdminLogin handles POST /api/v1/admin/login
func (h *AuthHandlers) PostAdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	token, err := h.authService.AuthenticateAdmin(req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
