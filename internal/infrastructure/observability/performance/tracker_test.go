package performance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteRaisesSlowOperationAlert(t *testing.T) {
	config := DefaultTrackerConfig()
	config.SlowResponseThreshold = time.Nanosecond
	config.CriticalResponseThreshold = time.Hour
	tracker := NewTracker(config)

	marker := tracker.StartOperation("collection:load", "user-1")
	time.Sleep(2 * time.Millisecond)
	marker.Complete()

	alerts := tracker.GetAlerts()
	require.NotEmpty(t, alerts, "completing a slow marker must raise an alert")
	assert.Equal(t, AlertWarning, alerts[0].Severity)
	assert.Equal(t, "collection:load", alerts[0].Operation)
}

func TestCompleteRaisesCriticalAlert(t *testing.T) {
	config := DefaultTrackerConfig()
	config.SlowResponseThreshold = time.Nanosecond
	config.CriticalResponseThreshold = 2 * time.Nanosecond
	tracker := NewTracker(config)

	marker := tracker.StartOperation("collection:load", "user-1")
	time.Sleep(2 * time.Millisecond)
	marker.Complete()

	alerts := tracker.GetAlerts()
	require.NotEmpty(t, alerts)
	assert.Equal(t, AlertCritical, alerts[0].Severity)
}

func TestCompleteSkipsAlertsUnderThreshold(t *testing.T) {
	tracker := NewTracker(DefaultTrackerConfig())

	marker := tracker.StartOperation("collection:load", "user-1")
	marker.Complete()

	assert.Empty(t, tracker.GetAlerts())
}

func TestDoubleCompleteRecordsOneAlert(t *testing.T) {
	config := DefaultTrackerConfig()
	config.SlowResponseThreshold = time.Nanosecond
	config.CriticalResponseThreshold = time.Hour
	tracker := NewTracker(config)

	marker := tracker.StartOperation("collection:load", "user-1")
	time.Sleep(2 * time.Millisecond)
	marker.Complete()
	marker.Complete()

	assert.Len(t, tracker.GetAlerts(), 1)
}

func TestAuthOperationThresholdAlert(t *testing.T) {
	config := DefaultTrackerConfig()
	config.AuthOperationThreshold = time.Nanosecond
	tracker := NewTracker(config)

	marker := tracker.StartOperation("auth:establish_session", "user-1")
	time.Sleep(2 * time.Millisecond)
	marker.Complete()

	alerts := tracker.GetAlerts()
	require.NotEmpty(t, alerts)
	assert.Equal(t, "auth:establish_session", alerts[0].Operation)
}

func TestGetSummaryCountsCompletedOperations(t *testing.T) {
	tracker := NewTracker(DefaultTrackerConfig())

	tracker.StartOperation("collection:load", "user-1").Complete()
	failed := tracker.StartOperation("collection:load", "user-1")
	failed.SetError(assert.AnError)
	failed.Complete()

	summary := tracker.GetSummary()
	assert.Equal(t, 2, summary["completedOperations"])
	assert.Equal(t, 1, summary["failedOperations"])
}
