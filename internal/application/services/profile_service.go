package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/StudyDeckHQ/studydeck-go/internal/domain/session"
	"github.com/StudyDeckHQ/studydeck-go/internal/domain/study"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/persistence/store"
)

// ProfileService reads and writes the user's preferences document through
// the session's storage backend.
type ProfileService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewProfileService creates a new profile service
func NewProfileService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ProfileService {
	return &ProfileService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetUserProfile fetches one profile document by user id. A fetch failure
// is logged and downgraded to nil: callers treat nil as "create a fresh
// profile" (best-effort read policy).
func (s *ProfileService) GetUserProfile(ctx context.Context, sess *session.Context, userID string) (*study.UserPreferences, error) {
	if !sess.HasUser() {
		return nil, nil
	}
	if userID == "" {
		userID = sess.UserID
	}

	marker := s.perfTracker.StartOperation("profile:get", userID)
	defer marker.Complete()

	payload, err := sess.Store.GetDocument(ctx, userID, store.CollectionProfile, store.DocProfile)
	if err != nil {
		s.logger.Session().Error("Profile fetch failed, returning null profile", "error", err.Error(), "userId", userID)
		marker.SetError(err)
		return nil, nil
	}
	if payload == nil {
		return nil, nil
	}

	var user study.UserPreferences
	if err := json.Unmarshal(payload, &user); err != nil {
		s.logger.Session().Error("Malformed profile document, returning null profile", "error", err.Error(), "userId", userID)
		return nil, nil
	}

	marker.SetSuccess(true)
	return &user, nil
}

// SaveUserProfile performs a full-document overwrite of the profile in the
// session's backend.
func (s *ProfileService) SaveUserProfile(ctx context.Context, sess *session.Context, user *study.UserPreferences) error {
	if user == nil || user.ID == "" {
		return fmt.Errorf("user with id required")
	}

	marker := s.perfTracker.StartOperation("profile:save", user.ID)
	defer marker.Complete()

	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := sess.Store.SetDocument(ctx, user.ID, store.CollectionProfile, store.DocProfile, payload); err != nil {
		marker.SetError(err)
		return err
	}

	marker.SetSuccess(true)
	return nil
}
