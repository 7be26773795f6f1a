package server

import (
	"github.com/gin-gonic/gin"
	"github.com/nulzo/llm-relay/internal/server/middleware"
	v1 "github.com/nulzo/llm-relay/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler(s.logger))

	s.router.NoMethod(methodNotAllowed)
	s.router.NoRoute(notFound)

	chatHandler := v1.NewChatHandler(s.deps.Chat)
	statusHandler := v1.NewStatusHandler(s.deps.Status)
	analyticsHandler := v1.NewAnalyticsHandler(s.deps.Analytics)

	// the same surface is served at the root and under /api
	for _, group := range []*gin.RouterGroup{&s.router.RouterGroup, s.router.Group("/api")} {
		group.POST("/chat", chatHandler.Chat)
		group.GET("/health", statusHandler.Health)
		group.GET("/providers", statusHandler.Providers)
		group.GET("/usage", analyticsHandler.GetUsage)

		if s.config.Server.DebugEnabled {
			group.GET("/debug", statusHandler.Debug)
		}
	}
}
