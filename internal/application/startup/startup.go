// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/StudyDeckHQ/studydeck-go/internal/application/container"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/performance"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/persistence/store"
	"github.com/StudyDeckHQ/studydeck-go/internal/presentation/http/server"
	"github.com/StudyDeckHQ/studydeck-go/pkg/config"
)

// Initialize performs the complete startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	log.Println("Initializing...")

	// Step 1: Channeled logging
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.Startup().Info("Channeled logging initialized", "logDir", config.DataDir)

	// Step 2: Storage backends. Local first so guest mode works even
	// when the remote connection is down.
	logger.Startup().Info("Opening local store...", "path", config.LocalSQLitePath)
	localStore, err := store.NewLocalStore(config.LocalSQLitePath, logger)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}

	logger.Startup().Info("Opening remote store...", "turso", config.TursoEnabled)
	remoteStore, err := store.NewRemoteStore(logger)
	if err != nil {
		return fmt.Errorf("failed to open remote store: %w", err)
	}
	logger.Startup().Info("Storage backends ready", "local", localStore.Backend(), "remote", remoteStore.Backend())

	// Step 3: Dependency injection container
	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())
	appContainer, err := container.NewContainer(localStore, remoteStore, logger, perfTracker)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 4: HTTP server
	port := config.Port
	httpServer := server.New(port, appContainer)
	logger.Startup().Info("HTTP server initialized", "port", port)

	// Step 5: Graceful shutdown wiring
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", port)

	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing storage backends...")
	if err := remoteStore.Close(); err != nil {
		logger.Shutdown().Error("Error closing remote store", "error", err.Error())
	}
	if err := localStore.Close(); err != nil {
		logger.Shutdown().Error("Error closing local store", "error", err.Error())
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return logger.Close()
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
