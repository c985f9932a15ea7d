package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/StudyDeckHQ/studydeck-go/internal/domain/session"
	"github.com/StudyDeckHQ/studydeck-go/internal/domain/study"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/persistence/store"
)

// CollectionService handles the typed entity collections (notes,
// summaries, queue, tasks, quizzes). Save replaces a whole collection
// atomically; Upsert and Delete touch single documents. Reads skip
// malformed rows rather than failing the whole load.
type CollectionService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewCollectionService creates a new collection service
func NewCollectionService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CollectionService {
	return &CollectionService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// LoadCollection returns the raw JSON documents of any known collection.
// Unknown collection names are a soft miss, not an error.
func (s *CollectionService) LoadCollection(ctx context.Context, sess *session.Context, name string) ([]json.RawMessage, bool, error) {
	collection, ok := store.ResolveCollection(name)
	if !ok {
		return nil, false, nil
	}

	marker := s.perfTracker.StartOperation("storage:load:"+collection, sess.UserID)
	defer marker.Complete()

	docs, err := sess.Store.QueryCollection(ctx, sess.UserID, collection)
	if err != nil {
		marker.SetError(err)
		return nil, true, err
	}

	payloads := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		payloads = append(payloads, json.RawMessage(doc.Payload))
	}

	marker.SetSuccess(true)
	return payloads, true, nil
}

// ReplaceCollection atomically replaces a whole collection with the given
// raw documents, keyed by the extracted id.
func (s *CollectionService) ReplaceCollection(ctx context.Context, sess *session.Context, name string, payloads []json.RawMessage) (bool, error) {
	collection, ok := store.ResolveCollection(name)
	if !ok {
		return false, nil
	}

	marker := s.perfTracker.StartOperation("storage:replace:"+collection, sess.UserID)
	defer marker.Complete()

	docs := make([]store.Document, 0, len(payloads))
	for _, payload := range payloads {
		id, err := extractDocID(payload)
		if err != nil {
			marker.SetError(err)
			return true, fmt.Errorf("document without id in %s: %w", collection, err)
		}
		docs = append(docs, store.Document{DocID: id, Payload: payload})
	}

	if err := sess.Store.ReplaceCollection(ctx, sess.UserID, collection, docs); err != nil {
		marker.SetError(err)
		return true, err
	}

	s.logger.Storage().Debug("Collection replaced", "userId", sess.UserID, "collection", collection, "count", len(docs))
	marker.SetSuccess(true)
	return true, nil
}

// UpsertDocument writes one document into a collection without touching
// its siblings.
func (s *CollectionService) UpsertDocument(ctx context.Context, sess *session.Context, name string, payload json.RawMessage) (bool, error) {
	collection, ok := store.ResolveCollection(name)
	if !ok {
		return false, nil
	}

	id, err := extractDocID(payload)
	if err != nil {
		return true, fmt.Errorf("document without id in %s: %w", collection, err)
	}

	if err := sess.Store.SetDocument(ctx, sess.UserID, collection, id, payload); err != nil {
		return true, err
	}
	return true, nil
}

// DeleteDocument removes one document. Deleting an absent document is a
// no-op.
func (s *CollectionService) DeleteDocument(ctx context.Context, sess *session.Context, name, docID string) (bool, error) {
	collection, ok := store.ResolveCollection(name)
	if !ok {
		return false, nil
	}
	if err := sess.Store.DeleteDocument(ctx, sess.UserID, collection, docID); err != nil {
		return true, err
	}
	return true, nil
}

// GetNotes returns the user's notes, skipping rows that no longer parse.
func (s *CollectionService) GetNotes(ctx context.Context, sess *session.Context) ([]study.Note, error) {
	return loadTyped[study.Note](ctx, s, sess, store.CollectionNotes)
}

// GetNote returns a single note by id, nil when absent.
func (s *CollectionService) GetNote(ctx context.Context, sess *session.Context, noteID string) (*study.Note, error) {
	payload, err := sess.Store.GetDocument(ctx, sess.UserID, store.CollectionNotes, noteID)
	if err != nil || payload == nil {
		return nil, err
	}
	var note study.Note
	if err := json.Unmarshal(payload, &note); err != nil {
		s.logger.Storage().Warn("Skipping malformed note", "userId", sess.UserID, "docId", noteID)
		return nil, nil
	}
	return &note, nil
}

// SaveNote upserts one note, stamping ownership and last-modified.
func (s *CollectionService) SaveNote(ctx context.Context, sess *session.Context, note *study.Note) error {
	note.UserID = sess.UserID
	note.LastModified = time.Now().UTC()
	return upsertTyped(ctx, sess, store.CollectionNotes, note.ID, note)
}

// GetSummaries returns the user's summaries.
func (s *CollectionService) GetSummaries(ctx context.Context, sess *session.Context) ([]study.Summary, error) {
	return loadTyped[study.Summary](ctx, s, sess, store.CollectionSummaries)
}

// GetQueue returns the user's study queue.
func (s *CollectionService) GetQueue(ctx context.Context, sess *session.Context) ([]study.QueueItem, error) {
	return loadTyped[study.QueueItem](ctx, s, sess, store.CollectionQueue)
}

// GetTasks returns the user's routine tasks.
func (s *CollectionService) GetTasks(ctx context.Context, sess *session.Context) ([]study.RoutineTask, error) {
	return loadTyped[study.RoutineTask](ctx, s, sess, store.CollectionTasks)
}

// GetQuizzes returns the user's quizzes.
func (s *CollectionService) GetQuizzes(ctx context.Context, sess *session.Context) ([]study.Quiz, error) {
	return loadTyped[study.Quiz](ctx, s, sess, store.CollectionQuizzes)
}

// SaveQuiz upserts one quiz without replacing the rest of the deck list.
func (s *CollectionService) SaveQuiz(ctx context.Context, sess *session.Context, quiz *study.Quiz) error {
	quiz.UserID = sess.UserID
	return upsertTyped(ctx, sess, store.CollectionQuizzes, quiz.ID, quiz)
}

func loadTyped[T any](ctx context.Context, s *CollectionService, sess *session.Context, collection string) ([]T, error) {
	docs, err := sess.Store.QueryCollection(ctx, sess.UserID, collection)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := json.Unmarshal(doc.Payload, &item); err != nil {
			s.logger.Storage().Warn("Skipping malformed document", "userId", sess.UserID, "collection", collection, "docId", doc.DocID)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func upsertTyped(ctx context.Context, sess *session.Context, collection, docID string, item any) error {
	if docID == "" {
		return fmt.Errorf("document id is required")
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal %s document: %w", collection, err)
	}
	return sess.Store.SetDocument(ctx, sess.UserID, collection, docID, payload)
}

// extractDocID pulls the "id" field out of a raw document.
func extractDocID(payload json.RawMessage) (string, error) {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return "", err
	}
	if probe.ID == "" {
		return "", fmt.Errorf("missing id field")
	}
	return probe.ID, nil
}
