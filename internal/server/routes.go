package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")
	api.GET("", s.handleAPIInfo)
	api.GET("/version", s.handleVersion)

	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)

	api.POST("/posts", s.handleCreatePost, s.requireAuth)
	api.GET("/posts", s.handleListPosts)
	api.GET("/dashboard/stats", s.handleDashboardStats)

	// WebSocket feed (no auth; the stream carries only public posts)
	s.echo.GET("/ws", s.handleWebSocket)
}
