package server

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleDashboardStats(c echo.Context) error {
	stats, err := s.app.GetDashboardStats(c.Request().Context())
	if err != nil {
		return err
	}

	if err := c.JSON(200, stats); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
