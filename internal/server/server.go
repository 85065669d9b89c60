package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/JorgeSaicoski/microservice-commons/middleware"
	commonsserver "github.com/JorgeSaicoski/microservice-commons/server"
	"github.com/JorgeSaicoski/timekeeper/internal/config"
	"github.com/gin-gonic/gin"
)

// Options configures New.
type Options struct {
	Config *config.Config
	// SetupRoutes registers the service routes on the engine.
	SetupRoutes func(router *gin.Engine, cfg *config.Config)
	// HealthCheckers are run by /health and /ready.
	HealthCheckers map[string]middleware.HealthChecker
}

type Server struct {
	cfg    *config.Config
	router *gin.Engine
	log    *slog.Logger
}

// New assembles the gin engine: request ids, panic recovery, CORS and the
// health endpoints, then the service routes.
func New(opts Options) *Server {
	cfg := opts.Config
	gin.SetMode(cfg.Server.GinMode)

	health := middleware.DefaultHealthConfig(cfg.ServiceName, cfg.ServiceVersion)
	for name, check := range opts.HealthCheckers {
		health.AddHealthChecker(name, check)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.Server.AllowedOrigins
	cors.AllowedHeaders = append(cors.AllowedHeaders, middleware.RequestIDHeader)

	router := gin.New()
	router.Use(
		middleware.DefaultRequestIDMiddleware(),
		middleware.DefaultRecoveryMiddleware(),
		middleware.NewCORSMiddleware(cors),
		middleware.HealthMiddleware(health),
	)
	if opts.SetupRoutes != nil {
		opts.SetupRoutes(router, cfg)
	}

	return &Server{
		cfg:    cfg,
		router: router,
		log:    slog.Default().With(slog.String("layer", "server")),
	}
}

// Router exposes the engine, mostly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to ShutdownTimeout.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Server.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	shutdown := commonsserver.NewShutdownManager(srv, commonsserver.GracefulShutdownConfig{
		Timeout:       s.cfg.Server.ShutdownTimeout,
		SignalTimeout: 5 * time.Second,
	})

	s.log.Info("server:listening", "service", s.cfg.ServiceName, "version", s.cfg.ServiceVersion, "addr", srv.Addr)
	if err := shutdown.StartWithGracefulShutdown(); err != nil {
		return err
	}
	s.log.Info("server:stopped")
	return nil
}
