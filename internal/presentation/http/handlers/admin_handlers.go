package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/StudyDeckHQ/studydeck-go/internal/application/container"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
)

// AdminHandlers contains operator HTTP handlers for runtime inspection
type AdminHandlers struct {
	container *container.Container
}

// NewAdminHandlers creates admin handlers over the full container
func NewAdminHandlers(c *container.Container) *AdminHandlers {
	return &AdminHandlers{container: c}
}

// connectionReporter is implemented by stores that can describe their
// pool state.
type connectionReporter interface {
	ConnectionInfo() string
}

// GetStatus handles GET /api/v1/admin/status
func (h *AdminHandlers) GetStatus(c *gin.Context) {
	status := gin.H{
		"localBackend":  h.container.LocalStore.Backend(),
		"remoteBackend": h.container.RemoteStore.Backend(),
	}

	if r, ok := h.container.LocalStore.(connectionReporter); ok {
		status["localConnection"] = r.ConnectionInfo()
	}
	if r, ok := h.container.RemoteStore.(connectionReporter); ok {
		status["remoteConnection"] = r.ConnectionInfo()
	}

	c.JSON(http.StatusOK, status)
}

// GetPerformance handles GET /api/v1/admin/performance
func (h *AdminHandlers) GetPerformance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"summary": h.container.PerfTracker.GetSummary(),
		"alerts":  h.container.PerfTracker.GetAlerts(),
	})
}

// GetLogLevels handles GET /api/v1/admin/logs/levels
func (h *AdminHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"levels": h.container.Logger.GetChannelLevels()})
}

// SetLogLevelRequest names one channel and its new level.
type SetLogLevelRequest struct {
	Channel string `json:"channel" binding:"required"`
	Level   string `json:"level" binding:"required"`
}

// PostLogLevel handles POST /api/v1/admin/logs/levels
func (h *AdminHandlers) PostLogLevel(c *gin.Context) {
	var req SetLogLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel and level are required"})
		return
	}

	level, ok := parseLevel(req.Level)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "level must be debug, info, warn, or error"})
		return
	}

	if err := h.container.Logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"levels": h.container.Logger.GetChannelLevels()})
}

func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
