package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/StudyDeckHQ/studydeck-go/internal/domain/study"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/persistence/store"
)

// MigrationService copies a guest's data from the local store into the
// remote store under the authenticated user id. The remote write is one
// transaction: either every record lands or none do, so a failed
// migration leaves the guest data intact and retryable.
type MigrationService struct {
	local       store.Store
	remote      store.Store
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewMigrationService creates a new migration service
func NewMigrationService(local, remote store.Store, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *MigrationService {
	return &MigrationService{
		local:       local,
		remote:      remote,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// MigrateData moves every entity collection plus the stats record from
// guestID on the local store to authID on the remote store, re-stamping
// ownership on each document. Returns the number of records migrated.
func (s *MigrationService) MigrateData(ctx context.Context, guestID, authID string) (int, error) {
	if guestID == "" || authID == "" {
		return 0, fmt.Errorf("guest and authenticated user ids are required")
	}

	marker := s.perfTracker.StartOperation("migration:migrate", authID)
	defer marker.Complete()

	s.logger.Migration().Info("Starting guest data migration", "guestId", guestID, "authId", authID)

	type pending struct {
		collection string
		docID      string
		payload    []byte
	}
	var records []pending

	for _, collection := range store.EntityCollections() {
		docs, err := s.local.QueryCollection(ctx, guestID, collection)
		if err != nil {
			marker.SetError(err)
			return 0, fmt.Errorf("failed to read guest %s: %w", collection, err)
		}
		for _, doc := range docs {
			payload, err := restampOwner(doc.Payload, authID)
			if err != nil {
				s.logger.Migration().Warn("Skipping malformed guest document", "guestId", guestID, "collection", collection, "docId", doc.DocID)
				continue
			}
			records = append(records, pending{collection: collection, docID: doc.DocID, payload: payload})
		}
	}

	statsPayload, err := s.local.GetDocument(ctx, guestID, store.CollectionData, store.DocStats)
	if err != nil {
		marker.SetError(err)
		return 0, fmt.Errorf("failed to read guest stats: %w", err)
	}
	if statsPayload != nil {
		var stats study.UserStats
		if err := json.Unmarshal(statsPayload, &stats); err == nil {
			stats.UserID = authID
			if restamped, err := json.Marshal(&stats); err == nil {
				records = append(records, pending{collection: store.CollectionData, docID: store.DocStats, payload: restamped})
			}
		} else {
			s.logger.Migration().Warn("Skipping malformed guest stats record", "guestId", guestID)
		}
	}

	if len(records) == 0 {
		s.logger.Migration().Info("No guest data to migrate", "guestId", guestID)
		marker.SetSuccess(true)
		return 0, nil
	}

	err = s.remote.RunBatch(ctx, func(batch store.Batch) error {
		for _, rec := range records {
			doc := store.Document{
				UserID:     authID,
				Collection: rec.collection,
				DocID:      rec.docID,
				Payload:    rec.payload,
			}
			if err := batch.Set(doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		marker.SetError(err)
		return 0, fmt.Errorf("migration batch failed: %w", err)
	}

	marker.AddMetadata("records", len(records))
	marker.SetSuccess(true)
	s.logger.Migration().Info("Guest data migration complete", "guestId", guestID, "authId", authID, "records", len(records))
	return len(records), nil
}

// restampOwner rewrites the userId field of a raw document.
func restampOwner(payload []byte, userID string) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, err
	}
	doc["userId"] = userID
	return json.Marshal(doc)
}
