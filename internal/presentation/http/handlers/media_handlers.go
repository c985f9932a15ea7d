package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/StudyDeckHQ/studydeck-go/internal/application/services"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/media"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/security"
	"github.com/StudyDeckHQ/studydeck-go/internal/presentation/http/middleware"
)

// MediaHandlers contains canvas-image and voice-memo HTTP handlers
type MediaHandlers struct {
	imageProcessor       *media.ImageProcessor
	transcriptionService *services.TranscriptionService
	logger               *logging.ChanneledLogger
	perfTracker          *performance.Tracker
}

// NewMediaHandlers creates media handlers with injected dependencies
func NewMediaHandlers(imageProcessor *media.ImageProcessor, transcriptionService *services.TranscriptionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *MediaHandlers {
	return &MediaHandlers{
		imageProcessor:       imageProcessor,
		transcriptionService: transcriptionService,
		logger:               logger,
		perfTracker:          perfTracker,
	}
}

// ImageUploadRequest carries a base64 data-URL image for a canvas element.
type ImageUploadRequest struct {
	Data string `json:"data" binding:"required"`
}

// PostImage handles POST /api/v1/images - stores the original and a
// webp thumbnail, returning both URLs.
func (h *MediaHandlers) PostImage(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)

	marker := h.perfTracker.StartOperation("post_image_request", sess.UserID)
	defer marker.Complete()

	var req ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	imageID := security.GenerateULID()
	imageURL, thumbURL, err := h.imageProcessor.ProcessCanvasImage(req.Data, imageID)
	if err != nil {
		h.logger.Media().Error("Image processing failed", "userId", sess.UserID, "error", err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "failed to process image"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, gin.H{
		"id":           imageID,
		"imageUrl":     imageURL,
		"thumbnailUrl": thumbURL,
	})
}

// DeleteImage handles DELETE /api/v1/images/:id
func (h *MediaHandlers) DeleteImage(c *gin.Context) {
	imageID := c.Param("id")

	if err := h.imageProcessor.DeleteCanvasImage(imageID); err != nil {
		h.logger.Media().Warn("Image delete failed", "imageId", imageID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete image"})
		return
	}

	c.Status(http.StatusNoContent)
}

// PostTranscribe handles POST /api/v1/notes/transcribe - turns an
// uploaded voice memo into a new note.
func (h *MediaHandlers) PostTranscribe(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)

	if !h.transcriptionService.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transcription is not configured"})
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read audio file"})
		return
	}
	defer file.Close()

	note, err := h.transcriptionService.TranscribeVoiceMemo(c.Request.Context(), sess, file, c.PostForm("title"))
	if err != nil {
		h.logger.Media().Error("Voice memo transcription failed", "userId", sess.UserID, "error", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{"error": "transcription failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"note": note})
}
