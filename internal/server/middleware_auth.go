package server

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/riteshubale-01/Vortexa-2.0/internal/domain"
	apperrors "github.com/riteshubale-01/Vortexa-2.0/internal/errors"
)

// requireAuth validates the Bearer token and attaches the caller's
// identity to the request context.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return apperrors.UnauthorizedError("missing bearer token")
		}

		userID, err := s.auth.VerifyToken(token)
		if err != nil {
			return apperrors.UnauthorizedError("invalid or expired token")
		}

		user, err := s.app.GetUser(c.Request().Context(), userID)
		if err != nil {
			return err
		}

		c.Set("userID", user.ID)
		c.Set("identity", domain.Identity{ID: user.ID, Username: user.Username})
		return next(c)
	}
}
