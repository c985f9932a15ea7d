// Package store implements the dual-mode document store behind every
// collection accessor. Guest sessions read and write a local SQLite file;
// authenticated sessions use a remote Turso/libsql database. Both modes
// share one schema and one Store contract, so callers never branch on
// session mode themselves.
package store

import (
	"context"
	"time"
)

// Collection keys. One logical collection per entity type, plus the
// reserved profile and stats locations. The remote path scheme
// users/{userId}/{collection}/{itemId} maps onto rows keyed
// (user_id, collection, doc_id).
const (
	CollectionNotes     = "notes"
	CollectionSummaries = "summaries"
	CollectionQueue     = "queue"
	CollectionTasks     = "tasks"
	CollectionQuizzes   = "quizzes"

	// users/{userId} profile document
	CollectionProfile = "profile"
	DocProfile        = "profile"

	// users/{userId}/data/stats singleton
	CollectionData = "data"
	DocStats       = "stats"

	// Device-scoped rows (the last-guest-session pointer) live under a
	// reserved user id so they never collide with real user data.
	DeviceUserID      = "_device"
	CollectionSession = "session"
	DocLastSession    = "last"
)

// entityCollections are the collections the generic dispatcher recognizes.
var entityCollections = map[string]string{
	"notes":     CollectionNotes,
	"summaries": CollectionSummaries,
	"queue":     CollectionQueue,
	"tasks":     CollectionTasks,
	"quizzes":   CollectionQuizzes,
}

// ResolveCollection maps a logical collection name to its storage key.
// Unrecognized names resolve to ok=false; callers fail soft to an empty
// result.
func ResolveCollection(name string) (string, bool) {
	key, ok := entityCollections[name]
	return key, ok
}

// EntityCollections returns the storage keys of all entity collections,
// in migration order.
func EntityCollections() []string {
	return []string{CollectionNotes, CollectionSummaries, CollectionQueue, CollectionTasks, CollectionQuizzes}
}

// Document is one stored record: a JSON payload plus its identity.
type Document struct {
	UserID     string    `json:"userId"`
	Collection string    `json:"collection"`
	DocID      string    `json:"docId"`
	Payload    []byte    `json:"payload"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Batch collects writes that commit atomically via Store.RunBatch.
type Batch interface {
	Set(doc Document) error
	Delete(userID, collection, docID string) error
}

// Store is the uniform persistence contract shared by the local (guest)
// and remote (authenticated) backends.
//
// Absent documents read as (nil, nil), never as an error. Save semantics
// are identical on both backends: SetDocument upserts by id,
// ReplaceCollection atomically swaps a user's entire collection, and
// DeleteDocument is the explicit removal path.
type Store interface {
	// GetDocument returns the payload for one document, or nil when absent.
	GetDocument(ctx context.Context, userID, collection, docID string) ([]byte, error)

	// SetDocument upserts one document.
	SetDocument(ctx context.Context, userID, collection, docID string, payload []byte) error

	// DeleteDocument removes one document. Deleting an absent document is
	// not an error.
	DeleteDocument(ctx context.Context, userID, collection, docID string) error

	// QueryCollection returns every document a user owns in a collection.
	QueryCollection(ctx context.Context, userID, collection string) ([]Document, error)

	// ReplaceCollection atomically replaces a user's entire collection
	// with the given documents. An empty slice empties the collection.
	ReplaceCollection(ctx context.Context, userID, collection string, docs []Document) error

	// RunBatch executes fn against a write batch and commits all-or-nothing:
	// if fn returns an error, or the commit fails, no write lands.
	RunBatch(ctx context.Context, fn func(Batch) error) error

	// Backend identifies the implementation ("sqlite" or "turso") for logging.
	Backend() string

	Close() error
}
