package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/StudyDeckHQ/studydeck-go/internal/application/services"
	"github.com/StudyDeckHQ/studydeck-go/internal/domain/study"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/presentation/http/middleware"
)

// ProfileHandlers contains profile HTTP handlers
type ProfileHandlers struct {
	profileService *services.ProfileService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewProfileHandlers creates profile handlers with injected dependencies
func NewProfileHandlers(profileService *services.ProfileService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ProfileHandlers {
	return &ProfileHandlers{
		profileService: profileService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// GetProfile handles GET /api/v1/profile - returns the session user's
// profile, null when unreadable rather than an error.
func (h *ProfileHandlers) GetProfile(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)

	user, err := h.profileService.GetUserProfile(c.Request.Context(), sess, sess.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// PutProfile handles PUT /api/v1/profile - full-document overwrite
func (h *ProfileHandlers) PutProfile(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)

	var user study.UserPreferences
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	// Ownership and mode come from the session, never the body.
	user.ID = sess.UserID
	user.Guest = sess.Guest

	if err := h.profileService.SaveUserProfile(c.Request.Context(), sess, &user); err != nil {
		h.logger.Storage().Error("Profile save failed", "userId", sess.UserID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
