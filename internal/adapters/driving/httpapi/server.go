package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/geovis/internal/adapters/wire"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
	"github.com/custodia-labs/geovis/internal/core/ports/driving"
	"github.com/custodia-labs/geovis/internal/logger"
	"github.com/custodia-labs/geovis/internal/metrics"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Deps are the services behind the API.
type Deps struct {
	// Source answers every read.
	Source driven.VisibilitySource
	// Queries handles registry writes.
	Queries driving.QueryService
	// Observations handles ingestion.
	Observations driving.ObservationService
	// Metrics is optional.
	Metrics *metrics.Collector
	// Now defaults to time.Now. It anchors default trend windows.
	Now func() time.Time
}

// Server is the HTTP API.
type Server struct {
	deps   Deps
	router *gin.Engine
}

// New builds the router.
func New(deps Deps) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Server{deps: deps}
	s.router = s.routes()
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger())
	if s.deps.Metrics != nil {
		r.Use(s.deps.Metrics.Middleware())
		r.GET("/metrics", s.deps.Metrics.Handler())
	}

	r.GET("/health", s.health)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, wire.ErrorBody{Detail: "route not found"})
	})

	api := r.Group(wire.BasePath)
	{
		api.GET("/queries", s.listQueries)
		api.POST("/queries", s.createQuery)
		api.GET("/queries/:id", s.getQuery)
		api.PUT("/queries/:id", s.updateQuery)
		api.DELETE("/queries/:id", s.deleteQuery)

		api.GET("/rankings", s.listRankings)
		api.POST("/rankings", s.ingest)
		api.GET("/rankings/latest", s.latestRankings)
		api.GET("/rankings/trends", s.trends)

		api.GET("/scores", s.listScores)
		api.GET("/scores/comparison", s.comparison)
		api.GET("/scores/:query_id/:brand", s.score)

		api.GET("/snapshots/:id", s.snapshot)
	}
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}
