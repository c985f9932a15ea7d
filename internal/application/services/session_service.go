// Package services provides application-level orchestration services
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/StudyDeckHQ/studydeck-go/internal/domain/study"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/persistence/store"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/security"
	"github.com/StudyDeckHQ/studydeck-go/pkg/config"
)

// SessionService owns guest identity and the last-session pointer. Guest
// sessions live entirely in the local store so they survive a page reload
// without server round-trips; authenticated identity comes from the auth
// provider and is never cached locally.
type SessionService struct {
	local       store.Store
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewSessionService creates a new session service bound to the local store.
func NewSessionService(local store.Store, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SessionService {
	return &SessionService{
		local:       local,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

type lastSessionPointer struct {
	GuestID string `json:"guestId"`
}

// CreateGuestUser produces a fresh guest profile with fixed default
// preferences, persists it, and records it as the last guest session.
func (s *SessionService) CreateGuestUser(ctx context.Context) (*study.UserPreferences, error) {
	marker := s.perfTracker.StartOperation("session:create_guest", "")
	defer marker.Complete()

	id, displayName := security.NewGuestIdentity()
	user := study.DefaultGuestPreferences(id, displayName)

	if err := s.SetSession(ctx, user); err != nil {
		marker.SetError(err)
		return nil, err
	}

	s.logger.Session().Info("Guest user created", "guestId", id)
	marker.SetSuccess(true)
	return user, nil
}

// SetSession records the active user. Guests are upserted into the local
// user directory and remembered as the last session; an authenticated
// user clears any stored guest pointer instead.
func (s *SessionService) SetSession(ctx context.Context, user *study.UserPreferences) error {
	if user == nil || user.ID == "" {
		return fmt.Errorf("user with id required")
	}

	if !user.Guest {
		s.logger.Session().Debug("Authenticated session set, clearing guest pointer", "userId", user.ID)
		return s.local.DeleteDocument(ctx, store.DeviceUserID, store.CollectionSession, store.DocLastSession)
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal guest profile: %w", err)
	}
	if err := s.local.SetDocument(ctx, user.ID, store.CollectionProfile, store.DocProfile, payload); err != nil {
		return err
	}

	pointer, err := json.Marshal(&lastSessionPointer{GuestID: user.ID})
	if err != nil {
		return fmt.Errorf("failed to marshal session pointer: %w", err)
	}
	return s.local.SetDocument(ctx, store.DeviceUserID, store.CollectionSession, store.DocLastSession, pointer)
}

// GetGuestSession resolves the last guest session pointer into a full
// profile. Returns nil without error when no guest session exists or the
// stored data is malformed.
func (s *SessionService) GetGuestSession(ctx context.Context) (*study.UserPreferences, error) {
	payload, err := s.local.GetDocument(ctx, store.DeviceUserID, store.CollectionSession, store.DocLastSession)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}

	var pointer lastSessionPointer
	if err := json.Unmarshal(payload, &pointer); err != nil || pointer.GuestID == "" {
		s.logger.Session().Warn("Malformed guest session pointer, treating as absent")
		return nil, nil
	}

	profilePayload, err := s.local.GetDocument(ctx, pointer.GuestID, store.CollectionProfile, store.DocProfile)
	if err != nil {
		return nil, err
	}
	if profilePayload == nil {
		return nil, nil
	}

	var user study.UserPreferences
	if err := json.Unmarshal(profilePayload, &user); err != nil {
		s.logger.Session().Warn("Malformed guest profile, treating as absent", "guestId", pointer.GuestID)
		return nil, nil
	}
	return &user, nil
}

// ClearSession removes the last-session pointer so the next visit starts
// anonymous. Guest data itself stays in place until a migration moves it.
func (s *SessionService) ClearSession(ctx context.Context) error {
	return s.local.DeleteDocument(ctx, store.DeviceUserID, store.CollectionSession, store.DocLastSession)
}

// IssueToken creates the session JWT the client presents on every request.
func (s *SessionService) IssueToken(userID, email string, guest bool) (string, error) {
	start := time.Now()
	token, err := security.GenerateSessionToken(userID, email, guest, config.JWTSecret, config.SessionTokenExpiry)
	if err != nil {
		s.logger.Session().Error("Failed to issue session token", "error", err.Error(), "userId", userID)
		return "", err
	}
	s.logger.Session().Debug("Session token issued", "userId", userID, "guest", guest, "duration", time.Since(start))
	return token, nil
}
