package services

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/StudyDeckHQ/studydeck-go/internal/domain/study"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/email"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/persistence/store"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/security"
	"github.com/StudyDeckHQ/studydeck-go/pkg/config"
)

// AuthService turns a verified identity from the auth provider into a
// server session: it ensures the remote profile exists, folds in any
// pending guest data, and issues the session token. Credential
// verification itself happens upstream; this service trusts its input.
type AuthService struct {
	remote      store.Store
	sessions    *SessionService
	migration   *MigrationService
	email       email.Service
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthService creates a new auth service
func NewAuthService(remote store.Store, sessions *SessionService, migration *MigrationService, emailService email.Service, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthService {
	return &AuthService{
		remote:      remote,
		sessions:    sessions,
		migration:   migration,
		email:       emailService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// SessionRequest is the verified identity handed over by the auth
// provider, plus the optional guest id whose local data should follow
// the user onto the remote store.
type SessionRequest struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	GuestID     string `json:"guestId,omitempty"`
}

// SessionResult is what the client needs to proceed: the token to attach
// to subsequent requests, the resolved profile, and how many guest
// records were carried over.
type SessionResult struct {
	Token           string                 `json:"token"`
	User            *study.UserPreferences `json:"user"`
	NewUser         bool                   `json:"newUser"`
	MigratedRecords int                    `json:"migratedRecords"`
}

// EstablishSession resolves or creates the remote profile for a verified
// user, migrates guest data when a guest id accompanies the sign-in, and
// issues the session token. Migration failure does not block the
// session: the guest data stays local and the migration can be retried.
func (s *AuthService) EstablishSession(ctx context.Context, req *SessionRequest) (*SessionResult, error) {
	if req == nil || req.UserID == "" {
		return nil, fmt.Errorf("verified user id is required")
	}
	// "admin" is reserved for the operator login and can never be a
	// session identity.
	if req.UserID == "admin" {
		return nil, fmt.Errorf("reserved user id")
	}

	marker := s.perfTracker.StartOperation("auth:establish_session", req.UserID)
	defer marker.Complete()

	user, newUser, err := s.ensureProfile(ctx, req)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	migrated := 0
	if req.GuestID != "" {
		migrated, err = s.migration.MigrateData(ctx, req.GuestID, req.UserID)
		if err != nil {
			s.logger.Auth().Warn("Guest migration failed, session continues", "userId", req.UserID, "guestId", req.GuestID, "error", err.Error())
			migrated = 0
		}
	}

	if err := s.sessions.SetSession(ctx, user); err != nil {
		s.logger.Auth().Warn("Failed to clear guest session pointer", "userId", req.UserID, "error", err.Error())
	}

	token, err := s.sessions.IssueToken(user.ID, user.Email, false)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	if newUser && user.Email != "" {
		go func(toEmail, displayName string, records int) {
			if err := s.email.SendWelcomeEmail(toEmail, displayName, records); err != nil {
				s.logger.Email().Warn("Welcome email failed", "error", err.Error())
			}
		}(user.Email, user.DisplayName, migrated)
	}

	s.logger.LogAuthOperation("establish_session", user.ID, true)
	marker.SetSuccess(true)
	return &SessionResult{
		Token:           token,
		User:            user,
		NewUser:         newUser,
		MigratedRecords: migrated,
	}, nil
}

// AuthenticateAdmin checks the operator password against the configured
// bcrypt hash and issues a short-lived admin token.
func (s *AuthService) AuthenticateAdmin(password string) (string, error) {
	marker := s.perfTracker.StartOperation("auth:admin_login", "admin")
	defer marker.Complete()

	if config.AdminPassword == "" {
		marker.SetError(fmt.Errorf("admin password not configured"))
		return "", fmt.Errorf("admin access is not configured")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(config.AdminPassword), []byte(password)); err != nil {
		s.logger.LogAuthOperation("admin_login", "admin", false)
		marker.SetError(err)
		return "", fmt.Errorf("invalid admin credentials")
	}

	token, err := security.GenerateAdminToken(config.JWTSecret, config.AdminTokenExpiry)
	if err != nil {
		marker.SetError(err)
		return "", err
	}

	s.logger.LogAuthOperation("admin_login", "admin", true)
	marker.SetSuccess(true)
	return token, nil
}

// ensureProfile loads the remote profile, creating a default one for a
// first sign-in.
func (s *AuthService) ensureProfile(ctx context.Context, req *SessionRequest) (*study.UserPreferences, bool, error) {
	payload, err := s.remote.GetDocument(ctx, req.UserID, store.CollectionProfile, store.DocProfile)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load profile: %w", err)
	}

	if payload != nil {
		var user study.UserPreferences
		if err := json.Unmarshal(payload, &user); err == nil {
			return &user, false, nil
		}
		s.logger.Auth().Warn("Malformed remote profile, recreating", "userId", req.UserID)
	}

	user := study.DefaultGuestPreferences(req.UserID, req.DisplayName)
	user.Guest = false
	user.Email = req.Email
	if user.DisplayName == "" {
		user.DisplayName = req.Email
	}

	out, err := json.Marshal(user)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := s.remote.SetDocument(ctx, req.UserID, store.CollectionProfile, store.DocProfile, out); err != nil {
		return nil, false, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Auth().Info("Remote profile created", "userId", req.UserID)
	return user, true, nil
}
