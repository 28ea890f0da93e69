// Package httpapi serves the display-name transform over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/gnana997/displayname/pkg/transformer"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 8 << 20

// Server holds the state for the HTTP API.
type Server struct {
	engine  *transformer.Engine
	router  *gin.Engine
	logger  *slog.Logger
	version string
}

// NewServer creates a Server. gin runs in release mode; requests are logged
// through logger.
func NewServer(engine *transformer.Engine, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{engine: engine, router: r, logger: logger, version: version}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.healthCheck)
	v1 := s.router.Group("/v1")
	v1.POST("/transform", s.handleTransform)
	v1.POST("/components", s.handleComponents)
}

// Handler returns the HTTP handler, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("HTTP API listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
