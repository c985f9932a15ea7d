package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StudyDeckHQ/studydeck-go/internal/domain/session"
	"github.com/StudyDeckHQ/studydeck-go/internal/domain/study"
	"github.com/StudyDeckHQ/studydeck-go/pkg/config"
)

func newShareFixture(t *testing.T) (*ShareService, *CollectionService, *sessionFixture) {
	t.Helper()

	previous := config.AESKey
	config.AESKey = "0123456789abcdef0123456789abcdef"
	t.Cleanup(func() { config.AESKey = previous })

	local := newTestStore(t, "local.db")
	remote := newTestStore(t, "remote.db")
	logger := newTestLogger(t)
	tracker := newTestTracker()

	collections := NewCollectionService(logger, tracker)
	svc := NewShareService(local, remote, collections, logger, tracker)
	return svc, collections, &sessionFixture{local: guestSession("guest-1", local)}
}

type sessionFixture struct {
	local *session.Context
}

func TestShareNoteMintsTokenAndMarksPublic(t *testing.T) {
	svc, collections, fx := newShareFixture(t)
	ctx := context.Background()

	require.NoError(t, collections.SaveNote(ctx, fx.local, &study.Note{ID: "n1", Title: "shared"}))

	token, err := svc.ShareNote(ctx, fx.local, "n1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	note, err := collections.GetNote(ctx, fx.local, "n1")
	require.NoError(t, err)
	assert.True(t, note.Public)
	assert.Equal(t, token, note.ShareToken)

	// Sharing again reuses the existing token.
	again, err := svc.ShareNote(ctx, fx.local, "n1")
	require.NoError(t, err)
	assert.Equal(t, token, again)
}

func TestResolveShareReturnsPublicNote(t *testing.T) {
	svc, collections, fx := newShareFixture(t)
	ctx := context.Background()

	require.NoError(t, collections.SaveNote(ctx, fx.local, &study.Note{ID: "n1", Title: "physics"}))
	token, err := svc.ShareNote(ctx, fx.local, "n1")
	require.NoError(t, err)

	note, err := svc.ResolveShare(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, "physics", note.Title)
}

func TestRevokedShareNoLongerResolves(t *testing.T) {
	svc, collections, fx := newShareFixture(t)
	ctx := context.Background()

	require.NoError(t, collections.SaveNote(ctx, fx.local, &study.Note{ID: "n1", Title: "secret"}))
	token, err := svc.ShareNote(ctx, fx.local, "n1")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeShare(ctx, fx.local, "n1"))

	note, err := svc.ResolveShare(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, note, "a circulating token for a private note resolves to nothing")
}

func TestResolveShareGarbageTokenIsSoftMiss(t *testing.T) {
	svc, _, _ := newShareFixture(t)

	note, err := svc.ResolveShare(context.Background(), "not-a-real-token")
	require.NoError(t, err)
	assert.Nil(t, note)
}

func TestShareUnknownNoteFails(t *testing.T) {
	svc, _, fx := newShareFixture(t)

	_, err := svc.ShareNote(context.Background(), fx.local, "missing")
	assert.Error(t, err)
}
