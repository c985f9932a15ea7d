// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/StudyDeckHQ/studydeck-go/internal/application/container"
	"github.com/StudyDeckHQ/studydeck-go/internal/presentation/http/handlers"
	"github.com/StudyDeckHQ/studydeck-go/internal/presentation/http/middleware"
	"github.com/StudyDeckHQ/studydeck-go/pkg/config"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Canvas images and their thumbnails are served straight from disk.
	r.Static("/media/images", filepath.Join(config.DataDir, "media", "images"))
	r.Static("/media/thumbs", filepath.Join(config.DataDir, "media", "thumbs"))

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(container.AuthService, container.SessionService, container.Logger, container.PerfTracker)
	profileHandlers := handlers.NewProfileHandlers(container.ProfileService, container.Logger, container.PerfTracker)
	statsHandlers := handlers.NewStatsHandlers(container.StatsService, container.StatsBroadcaster, container.Logger, container.PerfTracker)
	collectionHandlers := handlers.NewCollectionHandlers(container.CollectionService, container.Logger, container.PerfTracker)
	shareHandlers := handlers.NewShareHandlers(container.ShareService, container.Logger, container.PerfTracker)
	mediaHandlers := handlers.NewMediaHandlers(container.ImageProcessor, container.TranscriptionService, container.Logger, container.PerfTracker)
	migrationHandlers := handlers.NewMigrationHandlers(container.MigrationService, container.Logger, container.PerfTracker)
	adminHandlers := handlers.NewAdminHandlers(container)

	api := r.Group("/api/v1")
	api.Use(middleware.SessionMiddleware(container.LocalStore, container.RemoteStore, container.Logger))
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Session establishment and guest identity
		auth := api.Group("/auth")
		{
			auth.POST("/guest", authHandlers.PostGuest)
			auth.GET("/guest", authHandlers.GetGuestSession)
			auth.POST("/session", authHandlers.PostSession)
			auth.GET("/status", authHandlers.GetStatus)
			auth.POST("/logout", authHandlers.PostLogout)
		}

		// Public share-link resolution
		api.GET("/share/:token", shareHandlers.GetShared)

		// Everything below needs a resolved session
		authed := api.Group("")
		authed.Use(middleware.RequireSession())
		{
			authed.GET("/profile", profileHandlers.GetProfile)
			authed.PUT("/profile", profileHandlers.PutProfile)

			stats := authed.Group("/stats")
			{
				stats.GET("", statsHandlers.GetStats)
				stats.GET("/stream", statsHandlers.GetStatsStream)
				stats.POST("/login", statsHandlers.PostLogin)
				stats.POST("/study-time", statsHandlers.PostStudyTime)
				stats.POST("/quiz-taken", statsHandlers.PostQuizTaken)
				stats.POST("/note-created", statsHandlers.PostNoteCreated)
			}

			collections := authed.Group("/collections")
			{
				collections.GET("/:name", collectionHandlers.GetCollection)
				collections.PUT("/:name", collectionHandlers.PutCollection)
				collections.POST("/:name", collectionHandlers.PostDocument)
				collections.DELETE("/:name/:id", collectionHandlers.DeleteDocument)
			}

			authed.POST("/shares/:id", shareHandlers.PostShare)
			authed.DELETE("/shares/:id", shareHandlers.DeleteShare)
			authed.POST("/notes/transcribe", mediaHandlers.PostTranscribe)

			authed.POST("/images", mediaHandlers.PostImage)
			authed.DELETE("/images/:id", mediaHandlers.DeleteImage)

			authed.POST("/migrate", migrationHandlers.PostMigrate)
		}

		// Operator endpoints
		admin := api.Group("/admin")
		{
			admin.POST("/login", authHandlers.PostAdminLogin)

			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/status", adminHandlers.GetStatus)
				admin.GET("/performance", adminHandlers.GetPerformance)
				admin.GET("/logs/levels", adminHandlers.GetLogLevels)
				admin.POST("/logs/levels", adminHandlers.PostLogLevel)
			}
		}
	}

	return r
}
