package store

import (
	"fmt"

	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/persistence/database"
)

// The primary key makes per-user isolation structural: every read and
// write is scoped by user_id before anything else.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		user_id TEXT NOT NULL,
		collection TEXT NOT NULL,
		doc_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, collection, doc_id)
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_documents_user_collection ON documents (user_id, collection)`,
}

// TableCreator handles the creation of the document store schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the store's tables
// and indexes. Idempotent.
func (tc *TableCreator) CreateSchema(db *database.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}
