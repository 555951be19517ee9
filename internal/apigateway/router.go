// Package apigateway assembles the HTTP surface of the platform: the
// dataset upload and websocket test endpoints, runtime configuration,
// run history, synthesized audio, and Prometheus metrics.
package apigateway

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"voice-ai-eval-platform/internal/auth"
	"voice-ai-eval-platform/internal/configmanagement"
	"voice-ai-eval-platform/internal/jobmanagement"
	"voice-ai-eval-platform/internal/telemetry"
)

// Options carries everything the router serves. AudioDir is exposed under
// /audio so the frontend can play artifacts that never reached the object
// store; AdminToken guards the mutating endpoints and "" disables the
// guard.
type Options struct {
	Handlers   *jobmanagement.Handlers
	Store      *configmanagement.Store
	AdminToken string
	AudioDir   string
}

// SetupRouter initializes the Gin router for the API gateway.
func SetupRouter(opts Options) *gin.Engine {
	router := gin.Default()

	// The frontend is served from a different origin during development,
	// and the websocket handshake carries no credentials.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", telemetry.Handler())

	router.GET("/config", configmanagement.GetConfigHandler(opts.Store))
	router.GET("/ws/test", opts.Handlers.StreamTest)

	if opts.AudioDir != "" {
		router.Static("/audio", opts.AudioDir)
	}

	// Mutating endpoints require the admin token when one is configured.
	guarded := router.Group("/")
	guarded.Use(auth.TokenGuard(opts.AdminToken))
	{
		guarded.POST("/upload", opts.Handlers.Upload)
		guarded.POST("/config", configmanagement.UpdateConfigHandler(opts.Store))
	}

	// Run history, available when a database is configured.
	runRoutes := router.Group("/runs")
	{
		runRoutes.GET("", jobmanagement.ListRunsHandler)
		runRoutes.GET("/:id", jobmanagement.GetRunHandler)
		runRoutes.GET("/:id/results", jobmanagement.GetRunResultsHandler)
	}

	return router
}
