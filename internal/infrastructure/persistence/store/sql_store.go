package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/persistence/database"
	"github.com/StudyDeckHQ/studydeck-go/pkg/config"
)

// SQLStore is the SQL-backed implementation of Store, shared by both the
// local SQLite backend and the remote Turso backend.
type SQLStore struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewLocalStore opens the guest-mode store over a local SQLite file and
// ensures the schema exists.
func NewLocalStore(path string, logger *logging.ChanneledLogger) (*SQLStore, error) {
	db, err := database.NewSQLiteConnection(path, logger)
	if err != nil {
		return nil, fmt.Errorf("local store connection failed: %w", err)
	}
	return newSQLStore(db, logger)
}

// NewRemoteStore opens the authenticated-mode store. Turso when configured;
// otherwise a second SQLite file stands in so development and self-hosted
// deployments work without a cloud database.
func NewRemoteStore(logger *logging.ChanneledLogger) (*SQLStore, error) {
	var db *database.DB
	var err error

	if config.TursoEnabled && config.TursoDatabaseURL != "" && config.TursoAuthToken != "" {
		db, err = database.NewTursoConnection(config.TursoDatabaseURL, config.TursoAuthToken, logger)
		if err != nil {
			return nil, fmt.Errorf("remote store degraded: turso connection failed: %w", err)
		}
	} else {
		db, err = database.NewSQLiteConnection(config.RemoteSQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("remote store connection failed: %w", err)
		}
	}
	return newSQLStore(db, logger)
}

func newSQLStore(db *database.DB, logger *logging.ChanneledLogger) (*SQLStore, error) {
	if err := NewTableCreator().CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLStore{db: db, logger: logger}, nil
}

// Backend identifies the underlying connection for logging.
func (s *SQLStore) Backend() string { return s.db.Backend }

// ConnectionInfo reports pool state for the admin status endpoint.
func (s *SQLStore) ConnectionInfo() string { return s.db.GetConnectionInfo() }

// Close closes the underlying connection.
func (s *SQLStore) Close() error { return s.db.Close() }

// GetDocument returns one document's payload, or nil when absent.
func (s *SQLStore) GetDocument(ctx context.Context, userID, collection, docID string) ([]byte, error) {
	const query = `
		SELECT payload
		FROM documents
		WHERE user_id = ? AND collection = ? AND doc_id = ?`

	start := time.Now()
	s.logger.Storage().Debug("Loading document", "userId", userID, "collection", collection, "docId", docID, "backend", s.Backend())

	var payload []byte
	err := s.db.QueryRowContext(ctx, query, userID, collection, docID).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		s.logger.Storage().Error("Failed to load document", "error", err.Error(), "collection", collection, "docId", docID)
		return nil, err
	}

	s.checkSlowQuery(query, time.Since(start))
	return payload, nil
}

// SetDocument upserts one document.
func (s *SQLStore) SetDocument(ctx context.Context, userID, collection, docID string, payload []byte) error {
	const query = `
		INSERT INTO documents (user_id, collection, doc_id, payload, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, collection, doc_id)
		DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`

	start := time.Now()
	s.logger.Storage().Debug("Upserting document", "userId", userID, "collection", collection, "docId", docID, "backend", s.Backend())

	_, err := s.db.ExecContext(ctx, query, userID, collection, docID, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		s.logger.Storage().Error("Document upsert failed", "error", err.Error(), "collection", collection, "docId", docID)
		return err
	}

	s.checkSlowQuery(query, time.Since(start))
	return nil
}

// DeleteDocument removes one document; deleting an absent document is a no-op.
func (s *SQLStore) DeleteDocument(ctx context.Context, userID, collection, docID string) error {
	const query = `
		DELETE FROM documents
		WHERE user_id = ? AND collection = ? AND doc_id = ?`

	start := time.Now()
	s.logger.Storage().Debug("Deleting document", "userId", userID, "collection", collection, "docId", docID)

	_, err := s.db.ExecContext(ctx, query, userID, collection, docID)
	if err != nil {
		s.logger.Storage().Error("Document delete failed", "error", err.Error(), "collection", collection, "docId", docID)
		return err
	}

	s.checkSlowQuery(query, time.Since(start))
	return nil
}

// QueryCollection returns every document a user owns in a collection.
func (s *SQLStore) QueryCollection(ctx context.Context, userID, collection string) ([]Document, error) {
	const query = `
		SELECT doc_id, payload, updated_at
		FROM documents
		WHERE user_id = ? AND collection = ?
		ORDER BY doc_id`

	start := time.Now()
	s.logger.Storage().Debug("Querying collection", "userId", userID, "collection", collection, "backend", s.Backend())

	rows, err := s.db.QueryContext(ctx, query, userID, collection)
	if err != nil {
		s.logger.Storage().Error("Collection query failed", "error", err.Error(), "collection", collection)
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc := Document{UserID: userID, Collection: collection}
		var payload string
		var updatedAtStr string
		if err := rows.Scan(&doc.DocID, &payload, &updatedAtStr); err != nil {
			return nil, err
		}
		doc.Payload = []byte(payload)
		doc.UpdatedAt = parseTimestamp(updatedAtStr)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.checkSlowQuery(query, time.Since(start))
	return docs, nil
}

// ReplaceCollection atomically replaces a user's entire collection.
func (s *SQLStore) ReplaceCollection(ctx context.Context, userID, collection string, docs []Document) error {
	start := time.Now()
	s.logger.Storage().Debug("Replacing collection", "userId", userID, "collection", collection, "count", len(docs), "backend", s.Backend())

	err := s.RunBatch(ctx, func(b Batch) error {
		sb := b.(*sqlBatch)
		if _, err := sb.tx.ExecContext(ctx, `DELETE FROM documents WHERE user_id = ? AND collection = ?`, userID, collection); err != nil {
			return err
		}
		for _, doc := range docs {
			doc.UserID = userID
			doc.Collection = collection
			if err := sb.Set(doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Storage().Error("Collection replace failed", "error", err.Error(), "collection", collection)
		return err
	}

	s.checkSlowQuery("REPLACE_COLLECTION "+collection, time.Since(start))
	return nil
}

// RunBatch executes fn inside one transaction; a returned error rolls
// back every write.
func (s *SQLStore) RunBatch(ctx context.Context, fn func(Batch) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}

	if err := fn(&sqlBatch{ctx: ctx, tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Storage().Error("Batch rollback failed", "error", rbErr.Error())
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

type sqlBatch struct {
	ctx context.Context
	tx  *sql.Tx
}

func (b *sqlBatch) Set(doc Document) error {
	const query = `
		INSERT INTO documents (user_id, collection, doc_id, payload, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, collection, doc_id)
		DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`

	_, err := b.tx.ExecContext(b.ctx, query, doc.UserID, doc.Collection, doc.DocID, string(doc.Payload), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (b *sqlBatch) Delete(userID, collection, docID string) error {
	_, err := b.tx.ExecContext(b.ctx, `DELETE FROM documents WHERE user_id = ? AND collection = ? AND doc_id = ?`, userID, collection, docID)
	return err
}

func (s *SQLStore) checkSlowQuery(query string, duration time.Duration) {
	if duration > config.SlowQueryThreshold {
		s.logger.LogSlowQuery(query, duration, s.Backend())
	}
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// Legacy rows used the SQLite datetime format.
		ts, _ = time.Parse("2006-01-02 15:04:05", value)
	}
	return ts
}
