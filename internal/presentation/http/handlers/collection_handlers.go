package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/StudyDeckHQ/studydeck-go/internal/application/services"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/presentation/http/middleware"
)

// CollectionHandlers contains the generic entity-collection HTTP handlers
type CollectionHandlers struct {
	collectionService *services.CollectionService
	logger            *logging.ChanneledLogger
	perfTracker       *performance.Tracker
}

// NewCollectionHandlers creates collection handlers with injected dependencies
func NewCollectionHandlers(collectionService *services.CollectionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CollectionHandlers {
	return &CollectionHandlers{
		collectionService: collectionService,
		logger:            logger,
		perfTracker:       perfTracker,
	}
}

// GetCollection handles GET /api/v1/collections/:name
func (h *CollectionHandlers) GetCollection(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)
	name := c.Param("name")

	items, known, err := h.collectionService.LoadCollection(c.Request.Context(), sess, name)
	if !known {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load collection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// PutCollection handles PUT /api/v1/collections/:name - atomically
// replaces the whole collection with the posted array.
func (h *CollectionHandlers) PutCollection(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)
	name := c.Param("name")

	var items []json.RawMessage
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected a JSON array"})
		return
	}

	known, err := h.collectionService.ReplaceCollection(c.Request.Context(), sess, name, items)
	if !known {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
		return
	}
	if err != nil {
		h.logger.Storage().Error("Collection replace failed", "userId", sess.UserID, "collection", name, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save collection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": len(items)})
}

// PostDocument handles POST /api/v1/collections/:name - upserts one document
func (h *CollectionHandlers) PostDocument(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)
	name := c.Param("name")

	var item json.RawMessage
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	known, err := h.collectionService.UpsertDocument(c.Request.Context(), sess, name, item)
	if !known {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": 1})
}

// DeleteDocument handles DELETE /api/v1/collections/:name/:id
func (h *CollectionHandlers) DeleteDocument(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)
	name := c.Param("name")
	docID := c.Param("id")

	known, err := h.collectionService.DeleteDocument(c.Request.Context(), sess, name, docID)
	if !known {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete document"})
		return
	}

	c.Status(http.StatusNoContent)
}
