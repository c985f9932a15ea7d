package services

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/StudyDeckHQ/studydeck-go/internal/domain/session"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/messaging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/persistence/store"
)

func newTestLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   map[logging.Channel]slog.Level{},
	})
	require.NoError(t, err)
	return logger
}

func newTestTracker() *performance.Tracker {
	return performance.NewTracker(performance.DefaultTrackerConfig())
}

func newTestStore(t *testing.T, name string) store.Store {
	t.Helper()
	s, err := store.NewLocalStore(filepath.Join(t.TempDir(), name), newTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestBroadcaster(t *testing.T) *messaging.StatsBroadcaster {
	t.Helper()
	return messaging.NewStatsBroadcaster(newTestLogger(t))
}

func guestSession(userID string, st store.Store) *session.Context {
	return session.NewContext(userID, "", true, st)
}
