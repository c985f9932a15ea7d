package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/StudyDeckHQ/studydeck-go/internal/application/services"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/messaging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/presentation/http/middleware"
)

// StatsHandlers contains statistics HTTP handlers
type StatsHandlers struct {
	statsService *services.StatsService
	broadcaster  *messaging.StatsBroadcaster
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
	upgrader     websocket.Upgrader
}

// NewStatsHandlers creates stats handlers with injected dependencies
func NewStatsHandlers(statsService *services.StatsService, broadcaster *messaging.StatsBroadcaster, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *StatsHandlers {
	return &StatsHandlers{
		statsService: statsService,
		broadcaster:  broadcaster,
		logger:       logger,
		perfTracker:  perfTracker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is enforced by the CORS layer for the HTTP
			// endpoints; the stream carries only the caller's own stats.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// GetStats handles GET /api/v1/stats - lazily creates the record on
// first access.
func (h *StatsHandlers) GetStats(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)

	stats, err := h.statsService.GetStats(c.Request.Context(), sess)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// PostLogin handles POST /api/v1/stats/login - advances the login streak
// once per calendar day.
func (h *StatsHandlers) PostLogin(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)

	stats, err := h.statsService.CheckLoginStreak(c.Request.Context(), sess)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update login streak"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// StudyTimeRequest carries minutes studied in one sitting.
type StudyTimeRequest struct {
	Minutes int `json:"minutes" binding:"required"`
}

// PostStudyTime handles POST /api/v1/stats/study-time
func (h *StatsHandlers) PostStudyTime(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)

	var req StudyTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Minutes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "minutes must be a positive number"})
		return
	}

	stats, err := h.statsService.LogStudyTime(c.Request.Context(), sess, req.Minutes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log study time"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// QuizTakenRequest carries the score of a completed quiz.
type QuizTakenRequest struct {
	Score int `json:"score"`
}

// PostQuizTaken handles POST /api/v1/stats/quiz-taken
func (h *StatsHandlers) PostQuizTaken(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)

	var req QuizTakenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	stats, err := h.statsService.RecordQuizTaken(c.Request.Context(), sess, req.Score)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record quiz"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// PostNoteCreated handles POST /api/v1/stats/note-created
func (h *StatsHandlers) PostNoteCreated(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)

	stats, err := h.statsService.RecordNoteCreated(c.Request.Context(), sess)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record note"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetStatsStream handles GET /api/v1/stats/stream - upgrades to a
// websocket that pushes the user's stats record after every change.
func (h *StatsHandlers) GetStatsStream(c *gin.Context) {
	sess, _ := middleware.GetSessionContext(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Stream().Error("Websocket upgrade failed", "userId", sess.UserID, "error", err.Error())
		return
	}

	h.broadcaster.Subscribe(sess.UserID, conn)

	// Push the current record immediately so the client renders without
	// waiting for the first change.
	if stats, err := h.statsService.GetStats(c.Request.Context(), sess); err == nil && stats != nil {
		h.broadcaster.Publish(sess.UserID, stats)
	}
}
