package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/StudyDeckHQ/studydeck-go/internal/application/services"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/presentation/http/middleware"
)

// MigrationHandlers contains the guest-data migration HTTP handlers
type MigrationHandlers struct {
	migrationService *services.MigrationService
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

// NewMigrationHandlers creates migration handlers with injected dependencies
func NewMigrationHandlers(migrationService *services.MigrationService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *MigrationHandlers {
	return &MigrationHandlers{
		migrationService: migrationService,
		logger:           logger,
		perfTracker:      perfTracker,
	}
}

// MigrateRequest names the guest whose local data should move to the
// authenticated account.
type MigrateRequest struct {
	GuestID string `json:"guestId" binding:"required"`
}

// PostMigrate handles POST /api/v1/migrate - retry path for a migration
// that failed during sign-in. Requires an authenticated session.
func (h *MigrationHandlers) PostMigrate(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)
	if sess.IsGuest() {
		c.JSON(http.StatusForbidden, gin.H{"error": "an authenticated session is required"})
		return
	}

	var req MigrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guestId is required"})
		return
	}

	migrated, err := h.migrationService.MigrateData(c.Request.Context(), req.GuestID, sess.UserID)
	if err != nil {
		h.logger.Migration().Error("Migration failed", "userId", sess.UserID, "guestId", req.GuestID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "migration failed, guest data is untouched"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"migratedRecords": migrated})
}
