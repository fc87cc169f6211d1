// Package server wires the HTTP API over the ingestion pipeline and the
// catalog store.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arjenvw/repertoire/internal/catalog"
	"github.com/arjenvw/repertoire/internal/config"
	"github.com/arjenvw/repertoire/internal/ingestion"
	"github.com/arjenvw/repertoire/internal/logger"
	"github.com/arjenvw/repertoire/internal/server/handlers"
)

// Server is the HTTP front of the application.
type Server struct {
	cfg    config.ServerConfig
	router *gin.Engine
}

// New builds a Server over the given pipeline and store.
func New(cfg config.ServerConfig, pipeline *ingestion.Pipeline, store *catalog.Store) *Server {
	return &Server{
		cfg:    cfg,
		router: SetupRouter(handlers.New(pipeline, store), cfg.EnableCORS),
	}
}

// SetupRouter configures and returns the main router
func SetupRouter(h *handlers.Handlers, enableCORS bool) *gin.Engine {
	r := gin.Default()

	// CORS middleware for the browser extension
	if enableCORS {
		r.Use(func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}

			c.Next()
		})
	}

	setupRoutes(r, h)

	return r
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("HTTP server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
