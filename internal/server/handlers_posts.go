package server

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/riteshubale-01/Vortexa-2.0/internal/app"
	"github.com/riteshubale-01/Vortexa-2.0/internal/domain"
	apperrors "github.com/riteshubale-01/Vortexa-2.0/internal/errors"
)

const maxListLimit = 500

type createPostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *Server) handleCreatePost(c echo.Context) error {
	identity, ok := c.Get("identity").(domain.Identity)
	if !ok {
		return apperrors.InternalError("invalid identity in context", nil)
	}

	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	post, err := s.app.SubmitPost(c.Request().Context(), req.Title, req.Body, identity)
	if err != nil {
		return err
	}

	if err := c.JSON(201, app.NewPostResponse(post)); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListPosts(c echo.Context) error {
	filter := domain.PostFilter{
		Sentiment: domain.SentimentLabel(c.QueryParam("sentiment")),
	}

	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return apperrors.ValidationError("limit must be a positive integer").WithField("limit", raw)
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
		filter.Limit = limit
	}

	posts, err := s.app.ListRecentPosts(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	responses := make([]app.PostResponse, 0, len(posts))
	for i := range posts {
		responses = append(responses, app.NewPostResponse(&posts[i]))
	}

	if err := c.JSON(200, responses); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
