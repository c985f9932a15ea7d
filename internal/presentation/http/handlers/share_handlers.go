package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/StudyDeckHQ/studydeck-go/internal/application/services"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/presentation/http/middleware"
)

// ShareHandlers contains note-sharing HTTP handlers
type ShareHandlers struct {
	shareService *services.ShareService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewShareHandlers creates share handlers with injected dependencies
func NewShareHandlers(shareService *services.ShareService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ShareHandlers {
	return &ShareHandlers{
		shareService: shareService,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// PostShare handles POST /api/v1/shares/:id - marks the note public
// and returns its share token.
func (h *ShareHandlers) PostShare(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)
	noteID := c.Param("id")

	token, err := h.shareService.ShareNote(c.Request.Context(), sess, noteID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shareToken": token})
}

// DeleteShare handles DELETE /api/v1/shares/:id - makes the note
// private again, invalidating circulating links.
func (h *ShareHandlers) DeleteShare(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)
	noteID := c.Param("id")

	if err := h.shareService.RevokeShare(c.Request.Context(), sess, noteID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetShared handles GET /api/v1/share/:token - unauthenticated
// resolution of a share link. Revoked or dead links read as 404.
func (h *ShareHandlers) GetShared(c *gin.Context) {
	token := c.Param("token")

	note, err := h.shareService.ResolveShare(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve share link"})
		return
	}
	if note == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "shared note not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": note})
}
