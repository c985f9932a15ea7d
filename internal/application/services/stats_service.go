package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/StudyDeckHQ/studydeck-go/internal/domain/session"
	"github.com/StudyDeckHQ/studydeck-go/internal/domain/study"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/messaging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/persistence/store"
)

// dayKey is the histogram key format for daily activity.
const dayKey = "2006-01-02"

// StatsService maintains the per-user statistics record with
// read-modify-write semantics. There is no optimistic-concurrency check:
// concurrent updates are last-write-wins, accepted for a mostly
// single-tab application.
type StatsService struct {
	broadcaster *messaging.StatsBroadcaster
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewStatsService creates a new stats service
func NewStatsService(broadcaster *messaging.StatsBroadcaster, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *StatsService {
	return &StatsService{
		broadcaster: broadcaster,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetStats returns the session user's stats record, lazily creating and
// persisting a zeroed one on first access. A second call returns the
// identical record.
func (s *StatsService) GetStats(ctx context.Context, sess *session.Context) (*study.UserStats, error) {
	if !sess.HasUser() {
		return nil, nil
	}

	marker := s.perfTracker.StartOperation("stats:get", sess.UserID)
	defer marker.Complete()

	payload, err := sess.Store.GetDocument(ctx, sess.UserID, store.CollectionData, store.DocStats)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	if payload != nil {
		var stats study.UserStats
		if err := json.Unmarshal(payload, &stats); err == nil {
			if stats.DailyActivity == nil {
				stats.DailyActivity = make(map[string]int)
			}
			marker.SetSuccess(true)
			return &stats, nil
		}
		s.logger.Stats().Warn("Malformed stats record, recreating", "userId", sess.UserID)
	}

	stats := study.NewUserStats(sess.UserID)
	if err := s.persist(ctx, sess, stats); err != nil {
		marker.SetError(err)
		return nil, err
	}

	s.logger.Stats().Info("Stats record lazily created", "userId", sess.UserID)
	marker.SetSuccess(true)
	return stats, nil
}

// UpdateStats reads the current record, applies updater, persists the
// result, and returns it.
func (s *StatsService) UpdateStats(ctx context.Context, sess *session.Context, updater func(*study.UserStats)) (*study.UserStats, error) {
	if !sess.HasUser() {
		return nil, nil
	}

	stats, err := s.GetStats(ctx, sess)
	if err != nil {
		return nil, err
	}

	updater(stats)

	if err := s.persist(ctx, sess, stats); err != nil {
		return nil, err
	}

	s.broadcaster.Publish(sess.UserID, stats)
	return stats, nil
}

// CheckLoginStreak advances the login streak once per calendar day:
// consecutive-day logins increment it, a gap resets it to 1, and a second
// call on the same day changes nothing.
func (s *StatsService) CheckLoginStreak(ctx context.Context, sess *session.Context) (*study.UserStats, error) {
	now := time.Now().UTC()

	return s.UpdateStats(ctx, sess, func(stats *study.UserStats) {
		last := stats.LastLoginDate.UTC()
		if sameCalendarDay(last, now) {
			return
		}

		if sameCalendarDay(last.AddDate(0, 0, 1), now) {
			stats.LoginStreak++
		} else {
			stats.LoginStreak = 1
		}
		stats.LastLoginDate = now

		s.logger.Stats().Info("Login streak advanced", "userId", sess.UserID, "streak", stats.LoginStreak)
	})
}

// LogStudyTime adds minutes to the lifetime total and to today's entry in
// the daily-activity histogram.
func (s *StatsService) LogStudyTime(ctx context.Context, sess *session.Context, minutes int) (*study.UserStats, error) {
	if minutes <= 0 {
		return nil, fmt.Errorf("minutes must be positive")
	}

	today := time.Now().UTC().Format(dayKey)
	return s.UpdateStats(ctx, sess, func(stats *study.UserStats) {
		stats.StudyMinutes += minutes
		if stats.DailyActivity == nil {
			stats.DailyActivity = make(map[string]int)
		}
		stats.DailyActivity[today] += minutes
	})
}

// RecordQuizTaken increments the quizzes-taken counter and raises the
// high score when beaten.
func (s *StatsService) RecordQuizTaken(ctx context.Context, sess *session.Context, score int) (*study.UserStats, error) {
	return s.UpdateStats(ctx, sess, func(stats *study.UserStats) {
		stats.QuizzesTaken++
		if score > stats.HighScore {
			stats.HighScore = score
		}
	})
}

// RecordNoteCreated increments the notes-created counter.
func (s *StatsService) RecordNoteCreated(ctx context.Context, sess *session.Context) (*study.UserStats, error) {
	return s.UpdateStats(ctx, sess, func(stats *study.UserStats) {
		stats.NotesCreated++
	})
}

func (s *StatsService) persist(ctx context.Context, sess *session.Context, stats *study.UserStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	return sess.Store.SetDocument(ctx, sess.UserID, store.CollectionData, store.DocStats, payload)
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
