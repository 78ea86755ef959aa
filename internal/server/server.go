// Package server exposes the HTTP trigger and read surface over gin.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/futurizm/futurizm/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Config holds the HTTP server settings.
type Config struct {
	Addr string

	// CronSecret guards GET /api/generate when EnforceCronSecret is set.
	// With enforcement off (the default) the secret is accepted but never
	// required, so external schedulers keep working without one.
	CronSecret        string
	EnforceCronSecret bool
}

// Server wires the orchestrator and storage behind the JSON API.
type Server struct {
	cfg          Config
	orchestrator service.Orchestrator
	generator    service.Generator
	store        service.Storage
	router       *gin.Engine
}

// NewServer builds the server and registers all routes.
func NewServer(cfg Config, orchestrator service.Orchestrator, generator service.Generator, store service.Storage) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		cfg:          cfg,
		orchestrator: orchestrator,
		generator:    generator,
		store:        store,
		router:       router,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	api.POST("/generate", s.handleGenerateOne)
	api.GET("/generate", s.handleRunCycle)
	api.GET("/verify", s.handleStatus)
	api.POST("/verify", s.handleVerify)
	api.GET("/predictions", s.handleGetPredictions)
	api.POST("/predictions/like", s.handleLike)
	api.GET("/predictions/dates", s.handleDates)
	api.GET("/models/metrics", s.handleMetrics)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			return err
		}
		slog.Info("http server stopped")
		return nil
	case err := <-errCh:
		return err
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"ip", c.ClientIP())
	}
}
