package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/StudyDeckHQ/studydeck-go/internal/domain/session"
	"github.com/StudyDeckHQ/studydeck-go/internal/domain/study"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/persistence/store"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/security"
	"github.com/StudyDeckHQ/studydeck-go/pkg/config"
)

// ShareService mints and resolves public note links. A share token is
// the encrypted (owner, note) pair, so resolution needs no lookup table;
// revocation flips the note back to private, which invalidates any token
// still circulating.
type ShareService struct {
	local       store.Store
	remote      store.Store
	collections *CollectionService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewShareService creates a new share service
func NewShareService(local, remote store.Store, collections *CollectionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ShareService {
	return &ShareService{
		local:       local,
		remote:      remote,
		collections: collections,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// ShareNote marks a note public and returns its share token, minting one
// if the note was not already shared.
func (s *ShareService) ShareNote(ctx context.Context, sess *session.Context, noteID string) (string, error) {
	note, err := s.collections.GetNote(ctx, sess, noteID)
	if err != nil {
		return "", err
	}
	if note == nil {
		return "", fmt.Errorf("note not found")
	}

	if note.Public && note.ShareToken != "" {
		return note.ShareToken, nil
	}

	token, err := security.MintShareToken(sess.UserID, noteID, config.AESKey)
	if err != nil {
		s.logger.Storage().Error("Failed to mint share token", "userId", sess.UserID, "noteId", noteID, "error", err.Error())
		return "", fmt.Errorf("failed to create share link: %w", err)
	}

	note.Public = true
	note.ShareToken = token
	if err := s.collections.SaveNote(ctx, sess, note); err != nil {
		return "", err
	}

	s.logger.Storage().Info("Note shared", "userId", sess.UserID, "noteId", noteID)
	return token, nil
}

// RevokeShare makes a shared note private again.
func (s *ShareService) RevokeShare(ctx context.Context, sess *session.Context, noteID string) error {
	note, err := s.collections.GetNote(ctx, sess, noteID)
	if err != nil {
		return err
	}
	if note == nil {
		return fmt.Errorf("note not found")
	}

	note.Public = false
	note.ShareToken = ""
	if err := s.collections.SaveNote(ctx, sess, note); err != nil {
		return err
	}

	s.logger.Storage().Info("Note share revoked", "userId", sess.UserID, "noteId", noteID)
	return nil
}

// ResolveShare resolves a token into the shared note for unauthenticated
// viewing. A token for a private or deleted note resolves to nothing.
func (s *ShareService) ResolveShare(ctx context.Context, token string) (*study.Note, error) {
	marker := s.perfTracker.StartOperation("share:resolve", "")
	defer marker.Complete()

	userID, noteID, err := security.ResolveShareToken(token, config.AESKey)
	if err != nil {
		marker.SetError(err)
		return nil, nil
	}

	backend := s.remote
	if strings.HasPrefix(userID, "guest-") {
		backend = s.local
	}

	sess := session.NewContext(userID, "", strings.HasPrefix(userID, "guest-"), backend)
	note, err := s.collections.GetNote(ctx, sess, noteID)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}
	if note == nil || !note.Public {
		return nil, nil
	}

	marker.SetSuccess(true)
	return note, nil
}
