// Package container provides dependency injection for all singleton services
package container

import (
	"path/filepath"

	"github.com/StudyDeckHQ/studydeck-go/internal/application/services"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/email"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/media"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/messaging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/persistence/store"
	"github.com/StudyDeckHQ/studydeck-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services (stateless singletons over the two stores)
	SessionService       *services.SessionService
	ProfileService       *services.ProfileService
	StatsService         *services.StatsService
	CollectionService    *services.CollectionService
	MigrationService     *services.MigrationService
	AuthService          *services.AuthService
	TranscriptionService *services.TranscriptionService
	ShareService         *services.ShareService

	// Infrastructure dependencies
	LocalStore       store.Store
	RemoteStore      store.Store
	StatsBroadcaster *messaging.StatsBroadcaster
	EmailService     email.Service
	ImageProcessor   *media.ImageProcessor
	Logger           *logging.ChanneledLogger
	PerfTracker      *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(local, remote store.Store, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) (*Container, error) {
	emailService, err := email.NewService()
	if err != nil {
		logger.Email().Warn("Email delivery disabled", "reason", err.Error())
		emailService = email.Disabled()
	}

	broadcaster := messaging.NewStatsBroadcaster(logger)
	imageProcessor := media.NewImageProcessor(filepath.Join(config.DataDir, "media"))

	sessionService := services.NewSessionService(local, logger, perfTracker)
	profileService := services.NewProfileService(logger, perfTracker)
	statsService := services.NewStatsService(broadcaster, logger, perfTracker)
	collectionService := services.NewCollectionService(logger, perfTracker)
	migrationService := services.NewMigrationService(local, remote, logger, perfTracker)
	authService := services.NewAuthService(remote, sessionService, migrationService, emailService, logger, perfTracker)
	transcriptionService := services.NewTranscriptionService(collectionService, statsService, logger, perfTracker)
	shareService := services.NewShareService(local, remote, collectionService, logger, perfTracker)

	return &Container{
		SessionService:       sessionService,
		ProfileService:       profileService,
		StatsService:         statsService,
		CollectionService:    collectionService,
		MigrationService:     migrationService,
		AuthService:          authService,
		TranscriptionService: transcriptionService,
		ShareService:         shareService,

		LocalStore:       local,
		RemoteStore:      remote,
		StatsBroadcaster: broadcaster,
		EmailService:     emailService,
		ImageProcessor:   imageProcessor,
		Logger:           logger,
		PerfTracker:      perfTracker,
	}, nil
}

// StoreForSession selects the backend for a session mode.
func (c *Container) StoreForSession(guest bool) store.Store {
	if guest {
		return c.LocalStore
	}
	return c.RemoteStore
}
