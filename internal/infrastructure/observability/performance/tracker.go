package performance

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Tracker manages performance markers and provides metrics aggregation
type Tracker struct {
	markers map[string]*Marker
	alerts  []*Alert
	config  *TrackerConfig
	mu      sync.RWMutex
	started time.Time
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers   int  `json:"maxMarkers"`   // Maximum number of markers to retain
	MaxAlerts    int  `json:"maxAlerts"`    // Maximum number of alerts to retain
	EnableAlerts bool `json:"enableAlerts"` // Whether to generate performance alerts

	// Response time thresholds
	SlowResponseThreshold     time.Duration `json:"slowResponseThreshold"`
	CriticalResponseThreshold time.Duration `json:"criticalResponseThreshold"`

	// Operation-specific thresholds
	AuthOperationThreshold time.Duration `json:"authOperationThreshold"`
	StorageQueryThreshold  time.Duration `json:"storageQueryThreshold"`
	MigrationThreshold     time.Duration `json:"migrationThreshold"`
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers:                10000,
		MaxAlerts:                 500,
		EnableAlerts:              true,
		SlowResponseThreshold:     500 * time.Millisecond,
		CriticalResponseThreshold: 5 * time.Second,
		AuthOperationThreshold:    200 * time.Millisecond,
		StorageQueryThreshold:     50 * time.Millisecond,
		MigrationThreshold:        2 * time.Second,
	}
}

// AlertSeverity classifies performance alerts
type AlertSeverity string

const (
	AlertWarning  AlertSeverity = "warning"
	AlertCritical AlertSeverity = "critical"
)

// Alert records an operation that exceeded a performance threshold
type Alert struct {
	Severity  AlertSeverity `json:"severity"`
	Operation string        `json:"operation"`
	Duration  time.Duration `json:"duration"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"createdAt"`
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}

	return &Tracker{
		markers: make(map[string]*Marker),
		alerts:  make([]*Alert, 0),
		config:  config,
		started: time.Now(),
	}
}

// StartOperation creates and tracks a new performance marker for an operation
func (t *Tracker) StartOperation(operation, userID string) *Marker {
	marker := &Marker{
		Operation: operation,
		UserID:    userID,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true, // Assume success until proven otherwise
		tracker:   t,
	}

	markerID := fmt.Sprintf("%s_%s_%d", userID, operation, time.Now().UnixNano())

	t.mu.Lock()
	if len(t.markers) < t.config.MaxMarkers {
		t.markers[markerID] = marker
	}
	t.mu.Unlock()

	return marker
}

// StartOperationWithContext creates a performance marker that completes
// itself with an error if the context is cancelled first.
func (t *Tracker) StartOperationWithContext(ctx context.Context, operation, userID string) *Marker {
	marker := t.StartOperation(operation, userID)

	go func() {
		<-ctx.Done()
		if !marker.Completed {
			marker.SetError(ctx.Err())
			marker.Complete()
		}
	}()

	return marker
}

// operationCompleted runs threshold checks for a finished marker. Called
// from Marker.Complete.
func (t *Tracker) operationCompleted(marker *Marker) {
	if t.config.EnableAlerts {
		t.checkForAlerts(marker)
	}
}

func (t *Tracker) checkForAlerts(marker *Marker) {
	var alerts []*Alert

	if marker.Duration > t.config.CriticalResponseThreshold {
		alerts = append(alerts, t.newAlert(marker, AlertCritical, "Operation exceeded critical response time threshold"))
	} else if marker.Duration > t.config.SlowResponseThreshold {
		alerts = append(alerts, t.newAlert(marker, AlertWarning, "Operation exceeded slow response time threshold"))
	}

	switch {
	case strings.Contains(marker.Operation, "auth"):
		if marker.Duration > t.config.AuthOperationThreshold {
			alerts = append(alerts, t.newAlert(marker, AlertWarning, "Authentication operation exceeded threshold"))
		}
	case strings.Contains(marker.Operation, "storage"):
		if marker.Duration > t.config.StorageQueryThreshold {
			alerts = append(alerts, t.newAlert(marker, AlertWarning, "Storage operation exceeded threshold"))
		}
	case strings.Contains(marker.Operation, "migration"):
		if marker.Duration > t.config.MigrationThreshold {
			alerts = append(alerts, t.newAlert(marker, AlertWarning, "Migration exceeded threshold"))
		}
	}

	if len(alerts) == 0 {
		return
	}

	t.mu.Lock()
	t.alerts = append(t.alerts, alerts...)
	if len(t.alerts) > t.config.MaxAlerts {
		t.alerts = t.alerts[len(t.alerts)-t.config.MaxAlerts:]
	}
	t.mu.Unlock()
}

func (t *Tracker) newAlert(marker *Marker, severity AlertSeverity, message string) *Alert {
	return &Alert{
		Severity:  severity,
		Operation: marker.Operation,
		Duration:  marker.Duration,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

// GetAlerts returns a snapshot of the current alerts, newest last.
func (t *Tracker) GetAlerts() []*Alert {
	t.mu.RLock()
	defer t.mu.RUnlock()

	alerts := make([]*Alert, len(t.alerts))
	copy(alerts, t.alerts)
	return alerts
}

// GetSummary returns aggregate statistics for the admin dashboard.
func (t *Tracker) GetSummary() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	completed := 0
	failed := 0
	var totalDuration time.Duration
	for _, m := range t.markers {
		if m.Completed {
			completed++
			totalDuration += m.Duration
			if !m.Success {
				failed++
			}
		}
	}

	avg := time.Duration(0)
	if completed > 0 {
		avg = totalDuration / time.Duration(completed)
	}

	return map[string]any{
		"uptime":              time.Since(t.started).String(),
		"trackedOperations":   len(t.markers),
		"completedOperations": completed,
		"failedOperations":    failed,
		"averageDuration":     avg.String(),
		"alertCount":          len(t.alerts),
	}
}
