package store

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   map[logging.Channel]slog.Level{},
	})
	require.NoError(t, err)

	s, err := NewLocalStore(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetDocumentAbsentReturnsNil(t *testing.T) {
	s := newTestStore(t)

	payload, err := s.GetDocument(context.Background(), "u1", CollectionNotes, "missing")
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestSetDocumentUpserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetDocument(ctx, "u1", CollectionNotes, "n1", []byte(`{"id":"n1","title":"first"}`)))
	require.NoError(t, s.SetDocument(ctx, "u1", CollectionNotes, "n1", []byte(`{"id":"n1","title":"second"}`)))

	payload, err := s.GetDocument(ctx, "u1", CollectionNotes, "n1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"n1","title":"second"}`, string(payload))

	docs, err := s.QueryCollection(ctx, "u1", CollectionNotes)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestDeleteDocumentIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetDocument(ctx, "u1", CollectionTasks, "t1", []byte(`{"id":"t1"}`)))
	require.NoError(t, s.DeleteDocument(ctx, "u1", CollectionTasks, "t1"))
	require.NoError(t, s.DeleteDocument(ctx, "u1", CollectionTasks, "t1"))

	payload, err := s.GetDocument(ctx, "u1", CollectionTasks, "t1")
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestCollectionsAreIsolatedByUserAndCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetDocument(ctx, "u1", CollectionNotes, "a", []byte(`{"id":"a"}`)))
	require.NoError(t, s.SetDocument(ctx, "u2", CollectionNotes, "b", []byte(`{"id":"b"}`)))
	require.NoError(t, s.SetDocument(ctx, "u1", CollectionQueue, "c", []byte(`{"id":"c"}`)))

	docs, err := s.QueryCollection(ctx, "u1", CollectionNotes)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0].DocID)

	docs, err = s.QueryCollection(ctx, "u2", CollectionNotes)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "b", docs[0].DocID)
}

func TestReplaceCollectionSwapsContents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetDocument(ctx, "u1", CollectionQuizzes, "old", []byte(`{"id":"old"}`)))

	err := s.ReplaceCollection(ctx, "u1", CollectionQuizzes, []Document{
		{DocID: "q1", Payload: []byte(`{"id":"q1"}`)},
		{DocID: "q2", Payload: []byte(`{"id":"q2"}`)},
	})
	require.NoError(t, err)

	docs, err := s.QueryCollection(ctx, "u1", CollectionQuizzes)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	old, err := s.GetDocument(ctx, "u1", CollectionQuizzes, "old")
	require.NoError(t, err)
	assert.Nil(t, old)
}

func TestReplaceCollectionWithEmptySliceEmpties(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetDocument(ctx, "u1", CollectionSummaries, "s1", []byte(`{"id":"s1"}`)))
	require.NoError(t, s.ReplaceCollection(ctx, "u1", CollectionSummaries, nil))

	docs, err := s.QueryCollection(ctx, "u1", CollectionSummaries)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestRunBatchRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.RunBatch(ctx, func(b Batch) error {
		if err := b.Set(Document{UserID: "u1", Collection: CollectionNotes, DocID: "n1", Payload: []byte(`{"id":"n1"}`)}); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	docs, err := s.QueryCollection(ctx, "u1", CollectionNotes)
	require.NoError(t, err)
	assert.Empty(t, docs, "no write should land when the batch fails")
}

func TestRunBatchCommitsAllWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.RunBatch(ctx, func(b Batch) error {
		for _, id := range []string{"a", "b", "c"} {
			doc := Document{UserID: "u1", Collection: CollectionTasks, DocID: id, Payload: []byte(`{"id":"` + id + `"}`)}
			if err := b.Set(doc); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	docs, err := s.QueryCollection(ctx, "u1", CollectionTasks)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestResolveCollection(t *testing.T) {
	for _, name := range []string{"notes", "summaries", "queue", "tasks", "quizzes"} {
		key, ok := ResolveCollection(name)
		assert.True(t, ok)
		assert.Equal(t, name, key)
	}

	_, ok := ResolveCollection("profiles")
	assert.False(t, ok)
}
