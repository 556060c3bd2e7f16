// Package server is the HTTP transport: routing, request decoding, auth
// middleware, and the WebSocket endpoint. All business behavior lives in
// the app service.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/riteshubale-01/Vortexa-2.0/internal/app"
	"github.com/riteshubale-01/Vortexa-2.0/internal/auth"
	"github.com/riteshubale-01/Vortexa-2.0/internal/broadcast"
	"github.com/riteshubale-01/Vortexa-2.0/internal/config"
	apperrors "github.com/riteshubale-01/Vortexa-2.0/internal/errors"
)

// postgresHealthChecker is a minimal interface for PostgreSQL health checks
type postgresHealthChecker interface {
	Ping(ctx context.Context) error
}

// redisHealthChecker is a minimal interface for Redis health checks
type redisHealthChecker interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	app       *app.Service
	auth      *auth.Service
	hub       *broadcast.Hub
	db        postgresHealthChecker
	redis     redisHealthChecker
	startTime time.Time
}

// NewServer wires routes and middleware. redis may be nil when the
// deployment runs without Redis.
func NewServer(cfg *config.Config, appSvc *app.Service, authSvc *auth.Service, hub *broadcast.Hub, db postgresHealthChecker, redis redisHealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		app:       appSvc,
		auth:      authSvc,
		hub:       hub,
		db:        db,
		redis:     redis,
		startTime: time.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
