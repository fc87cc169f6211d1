package server

import (
	"github.com/gin-gonic/gin"

	"github.com/arjenvw/repertoire/internal/server/handlers"
)

// setupRoutes configures all API routes
func setupRoutes(r *gin.Engine, h *handlers.Handlers) {
	api := r.Group("/api")
	{
		api.GET("/health", h.HandleHealthCheck)

		api.POST("/recordings", h.HandleIngestRecordings)
		api.POST("/recordings/raw", h.HandleIngestRaw)
		api.GET("/recordings", h.HandleListRecordings)
		api.PUT("/recordings/:id/library", h.HandleSetLibrary)

		api.GET("/stats", h.HandleStats)
	}
}
