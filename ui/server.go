// Package ui serves the catalog workspace over HTTP.
package ui

import (
	"context"
	"net/http"
	"time"

	"gocatalog/app"
	"gocatalog/internal/logging"
	"gocatalog/internal/usage"
	"gocatalog/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxUploadBytes bounds the in-memory part of a multipart upload.
const maxUploadBytes = 32 << 20

// Server represents the workspace web server
type Server struct {
	router   *gin.Engine
	catalog  *app.CatalogService
	usage    *usage.Service
	assist   http.Handler
	provider string
	logger   zerolog.Logger
}

// Dependencies are the services the server exposes.
type Dependencies struct {
	Catalog *app.CatalogService
	Usage   *usage.Service
	// Assist is the chi assist router; it serves POST /assist.
	Assist http.Handler
	// Provider names the model backend for the health check.
	Provider string
}

// NewServer creates a new web server instance
func NewServer(deps Dependencies, logger zerolog.Logger) *Server {
	router := gin.New()
	router.MaxMultipartMemory = maxUploadBytes

	s := &Server{
		router:   router,
		catalog:  deps.Catalog,
		usage:    deps.Usage,
		assist:   deps.Assist,
		provider: deps.Provider,
		logger:   logging.Component(logger, "Server"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestLogger(s.logger))
	s.router.Use(middleware.Recovery(s.logger))
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/sessions", s.handleCreateSession)
		api.GET("/sessions/:id", s.handleGetSession)
		api.DELETE("/sessions/:id", s.handleDeleteSession)
		api.PUT("/sessions/:id/mapping", s.handleOverrideMapping)
		api.POST("/sessions/:id/detect", s.handleDetect)
		api.GET("/sessions/:id/preview", s.handlePreview)
		api.GET("/sessions/:id/coverage", s.handleCoverage)
		api.GET("/sessions/:id/export", s.handleExport)
		api.POST("/sessions/:id/enrich", s.handleEnrich)
		api.POST("/sessions/:id/chat", s.handleChat)
		api.GET("/usage", s.handleUsage)

		if s.assist != nil {
			api.POST("/assist", gin.WrapH(http.StripPrefix("/api", s.assist)))
		}
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains for up to 10s.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("workspace server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
