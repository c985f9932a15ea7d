package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StudyDeckHQ/studydeck-go/internal/domain/study"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/persistence/store"
)

func TestProfileRoundtrip(t *testing.T) {
	st := newTestStore(t, "profile.db")
	svc := NewProfileService(newTestLogger(t), newTestTracker())
	sess := guestSession("guest-1", st)
	ctx := context.Background()

	user := &study.UserPreferences{
		ID:          "guest-1",
		Guest:       true,
		DisplayName: "Guest 1234",
		FreeTime:    "weekends",
		Goal:        "pass-finals",
	}
	require.NoError(t, svc.SaveUserProfile(ctx, sess, user))

	loaded, err := svc.GetUserProfile(ctx, sess, "guest-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "weekends", loaded.FreeTime)
	assert.Equal(t, "pass-finals", loaded.Goal)
}

func TestSaveProfileIsFullOverwrite(t *testing.T) {
	st := newTestStore(t, "profile.db")
	svc := NewProfileService(newTestLogger(t), newTestTracker())
	sess := guestSession("guest-1", st)
	ctx := context.Background()

	require.NoError(t, svc.SaveUserProfile(ctx, sess, &study.UserPreferences{
		ID: "guest-1", DisplayName: "Guest 1234", Goal: "pass-finals",
	}))
	require.NoError(t, svc.SaveUserProfile(ctx, sess, &study.UserPreferences{
		ID: "guest-1", DisplayName: "Guest 1234",
	}))

	loaded, err := svc.GetUserProfile(ctx, sess, "guest-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Empty(t, loaded.Goal, "fields absent from the save are gone, not merged")
}

func TestGetProfileMissingReturnsNil(t *testing.T) {
	st := newTestStore(t, "profile.db")
	svc := NewProfileService(newTestLogger(t), newTestTracker())
	sess := guestSession("guest-1", st)

	loaded, err := svc.GetUserProfile(context.Background(), sess, "guest-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestGetProfileMalformedReadsAsNull(t *testing.T) {
	st := newTestStore(t, "profile.db")
	svc := NewProfileService(newTestLogger(t), newTestTracker())
	sess := guestSession("guest-1", st)
	ctx := context.Background()

	require.NoError(t, st.SetDocument(ctx, "guest-1", store.CollectionProfile, store.DocProfile, []byte(`{{broken`)))

	loaded, err := svc.GetUserProfile(ctx, sess, "guest-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
