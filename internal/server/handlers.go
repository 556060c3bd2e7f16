package server

import (
	"github.com/labstack/echo/v4"

	"github.com/riteshubale-01/Vortexa-2.0/internal/version"
)

func (s *Server) handleAPIInfo(c echo.Context) error {
	return c.JSON(200, map[string]string{
		"name":    "vortexa",
		"version": version.Version,
	})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(200, version.Get())
}
