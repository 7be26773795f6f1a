package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/nulzo/llm-relay/internal/analytics"
	"github.com/nulzo/llm-relay/internal/config"
	"github.com/nulzo/llm-relay/internal/gateway"
	"github.com/nulzo/llm-relay/internal/server/middleware"
	"github.com/nulzo/llm-relay/internal/server/validator"
	"github.com/nulzo/llm-relay/internal/status"
	"github.com/nulzo/llm-relay/pkg/api"
	"go.uber.org/zap"
)

// Deps are the services the HTTP layer exposes.
type Deps struct {
	Chat      gateway.Service
	Status    *status.Reporter
	Analytics analytics.Service
}

type Server struct {
	router *gin.Engine
	config *config.Config
	logger *zap.Logger
	deps   Deps
}

func New(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	validator.InitValidator()

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(logger))
	engine.Use(ginzap.RecoveryWithZap(logger, true))
	if cfg.Tracing.Enabled {
		engine.Use(middleware.Tracing(cfg.Tracing.ServiceName))
	}

	s := &Server{
		router: engine,
		logger: logger,
		config: cfg,
		deps:   deps,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", s.config.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// leave room for the slowest upstream call
		WriteTimeout: s.config.Server.UpstreamTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func methodNotAllowed(c *gin.Context) {
	_ = c.Error(api.MethodNotAllowedError())
}

func notFound(c *gin.Context) {
	_ = c.Error(api.NotFoundError("Not Found"))
}
