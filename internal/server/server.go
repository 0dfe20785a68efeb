// Package server hosts the HTTP API: caption search, video metadata
// lookups, and health.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/subseek/subseek/internal/config"
	"github.com/subseek/subseek/internal/search"
	"github.com/subseek/subseek/internal/store"
)

// Config tunes the HTTP server.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// FromConfig resolves the yaml server section onto a Config, falling
// back to defaults for missing or unparseable values.
func FromConfig(sc config.ServerConfig) Config {
	cfg := DefaultConfig()
	if sc.Addr != "" {
		cfg.Addr = sc.Addr
	}
	if d, err := time.ParseDuration(sc.ReadTimeout); err == nil && d > 0 {
		cfg.ReadTimeout = d
	}
	if d, err := time.ParseDuration(sc.WriteTimeout); err == nil && d > 0 {
		cfg.WriteTimeout = d
	}
	if d, err := time.ParseDuration(sc.ShutdownTimeout); err == nil && d > 0 {
		cfg.ShutdownTimeout = d
	}
	return cfg
}

// ErrNilDependency is returned when a required collaborator is nil.
var ErrNilDependency = errors.New("nil dependency")

// Server is the HTTP API over a search engine and a video store.
type Server struct {
	echo   *echo.Echo
	engine search.Searcher
	videos store.VideoStore
	cfg    Config
	log    *slog.Logger
}

// New creates the HTTP server and registers its routes and middleware.
func New(engine search.Searcher, videos store.VideoStore, cfg Config, log *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, errors.Join(ErrNilDependency, errors.New("search engine is required"))
	}
	if videos == nil {
		return nil, errors.Join(ErrNilDependency, errors.New("video store is required"))
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultConfig().Addr
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	s := &Server{
		echo:   e,
		engine: engine,
		videos: videos,
		cfg:    cfg,
		log:    log,
	}

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(s.requestLogger())

	e.GET("/healthz", s.handleHealthz)
	api := e.Group("/api")
	api.GET("/search", s.handleSearch)
	api.GET("/videos/:id", s.handleGetVideo)
	api.POST("/videos/batch", s.handleVideosBatch)

	return s, nil
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.log.Info("http_server_started", "addr", s.cfg.Addr)
	if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("http_server_stopping")
	return s.echo.Shutdown(ctx)
}

// ShutdownTimeout is the grace period Shutdown callers should allow.
func (s *Server) ShutdownTimeout() time.Duration {
	return s.cfg.ShutdownTimeout
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// requestLogger emits one structured log line per request.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error.Error())
				s.log.Warn("http_request", attrs...)
				return nil
			}
			s.log.Info("http_request", attrs...)
			return nil
		},
	})
}
