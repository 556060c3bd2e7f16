// Package app contains the application service: the use cases behind the
// HTTP handlers, wired together from the repositories, the sentiment
// classifier, moderation, and the broadcast hub.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/riteshubale-01/Vortexa-2.0/internal/analytics"
	"github.com/riteshubale-01/Vortexa-2.0/internal/auth"
	"github.com/riteshubale-01/Vortexa-2.0/internal/domain"
	"github.com/riteshubale-01/Vortexa-2.0/internal/errors"
	"github.com/riteshubale-01/Vortexa-2.0/internal/metrics"
	"github.com/riteshubale-01/Vortexa-2.0/internal/moderation"
)

const (
	maxTitleLength = 200
	maxBodyLength  = 5000
)

// Broadcaster delivers a serialized event to local WebSocket subscribers.
type Broadcaster interface {
	Broadcast(payload []byte)
}

// EventPublisher mirrors events to peer instances. Optional; nil means
// single-instance operation.
type EventPublisher interface {
	PublishEvent(ctx context.Context, payload []byte) error
}

// PostResponse is the wire representation of a post, used both in API
// responses and in new_post events.
type PostResponse struct {
	ID             uuid.UUID               `json:"id"`
	Title          string                  `json:"title"`
	Body           string                  `json:"body"`
	AuthorUsername string                  `json:"author_username"`
	CreatedAt      time.Time               `json:"created_at"`
	Sentiment      *domain.SentimentResult `json:"sentiment,omitempty"`
	Source         string                  `json:"source"`
}

// NewPostResponse converts a domain post to its wire representation.
func NewPostResponse(post *domain.Post) PostResponse {
	return PostResponse{
		ID:             post.ID,
		Title:          post.Title,
		Body:           post.Body,
		AuthorUsername: post.AuthorUsername,
		CreatedAt:      post.CreatedAt,
		Sentiment:      post.Sentiment,
		Source:         post.Source,
	}
}

type newPostEvent struct {
	Type string       `json:"type"`
	Post PostResponse `json:"post"`
}

// Service implements the application use cases.
type Service struct {
	posts      domain.PostRepository
	users      domain.UserRepository
	classifier domain.Classifier
	moderator  moderation.Moderator
	auth       *auth.Service
	hub        Broadcaster
	publisher  EventPublisher
	aggregator *analytics.Aggregator
	clock      clockwork.Clock
}

func NewService(
	posts domain.PostRepository,
	users domain.UserRepository,
	classifier domain.Classifier,
	moderator moderation.Moderator,
	authSvc *auth.Service,
	hub Broadcaster,
	publisher EventPublisher,
	aggregator *analytics.Aggregator,
	clock clockwork.Clock,
) *Service {
	return &Service{
		posts:      posts,
		users:      users,
		classifier: classifier,
		moderator:  moderator,
		auth:       authSvc,
		hub:        hub,
		publisher:  publisher,
		aggregator: aggregator,
		clock:      clock,
	}
}

// Register creates a user account and returns it together with a fresh
// access token.
func (s *Service) Register(ctx context.Context, username, email, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if username == "" || email == "" {
		return nil, "", errors.ValidationError("username and email are required")
	}
	if len(password) < 8 {
		return nil, "", errors.ValidationError("password must be at least 8 characters")
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, "", errors.InternalError("failed to hash password", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now().UTC(),
	}

	if err := s.users.Insert(ctx, user); err != nil {
		switch err {
		case domain.ErrEmailTaken:
			return nil, "", errors.ConflictError("email already registered")
		case domain.ErrUsernameTaken:
			return nil, "", errors.ConflictError("username already taken")
		}
		return nil, "", errors.InternalError("failed to create user", err)
	}

	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		return nil, "", errors.InternalError("failed to issue token", err)
	}
	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh access token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, "", errors.UnauthorizedError("invalid email or password")
		}
		return nil, "", errors.InternalError("failed to load user", err)
	}

	if !s.auth.VerifyPassword(user.PasswordHash, password) {
		return nil, "", errors.UnauthorizedError("invalid email or password")
	}

	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		return nil, "", errors.InternalError("failed to issue token", err)
	}
	return user, token, nil
}

// GetUser loads a user by ID. Used by the auth middleware to resolve the
// token subject.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, errors.UnauthorizedError("unknown user")
		}
		return nil, errors.InternalError("failed to load user", err)
	}
	return user, nil
}

// SubmitPost runs the posting pipeline: moderate, classify, persist,
// broadcast. Classification never fails; persistence failure is the only
// hard error. Broadcast is best effort.
func (s *Service) SubmitPost(ctx context.Context, title, body string, author domain.Identity) (*domain.Post, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)

	if title == "" || body == "" {
		return nil, errors.ValidationError("title and body are required")
	}
	if len(title) > maxTitleLength {
		return nil, errors.ValidationError("title too long").WithField("max_length", maxTitleLength)
	}
	if len(body) > maxBodyLength {
		return nil, errors.ValidationError("body too long").WithField("max_length", maxBodyLength)
	}

	verdict := s.moderator.Moderate(ctx, title+"\n"+body)
	if !verdict.Allowed {
		metrics.ModerationRejectionsTotal.Inc()
		rejected := errors.ValidationError("content rejected by moderation").WithField("reason", verdict.Reason)
		rejected.Cause = domain.ErrContentRejected
		return nil, rejected
	}

	return s.createPost(ctx, title, body, author, domain.SourceUser)
}

// IngestPost persists and broadcasts a post fetched from an external feed.
// It skips moderation; external content is attributed to the feed itself.
func (s *Service) IngestPost(ctx context.Context, title, body, feedName string) (*domain.Post, error) {
	author := domain.Identity{ID: uuid.Nil, Username: feedName}
	return s.createPost(ctx, title, body, author, domain.SourceReddit)
}

func (s *Service) createPost(ctx context.Context, title, body string, author domain.Identity, source string) (*domain.Post, error) {
	result := s.classifier.Classify(ctx, title+" "+body)

	post := &domain.Post{
		ID:             uuid.New(),
		Title:          title,
		Body:           body,
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		CreatedAt:      s.clock.Now().UTC(),
		Sentiment:      &result,
		Source:         source,
	}

	if err := s.posts.Insert(ctx, post); err != nil {
		return nil, errors.InternalError("failed to store post", err)
	}
	metrics.PostsCreatedTotal.WithLabelValues(source).Inc()

	s.broadcastPost(ctx, post)
	return post, nil
}

func (s *Service) broadcastPost(ctx context.Context, post *domain.Post) {
	payload, err := json.Marshal(newPostEvent{Type: "new_post", Post: NewPostResponse(post)})
	if err != nil {
		slog.Error("Failed to marshal new_post event", "post_id", post.ID, "error", err)
		return
	}

	// With Redis configured every instance, this one included, receives
	// the event through the subscription; broadcasting locally as well
	// would deliver it twice.
	if s.publisher != nil {
		if err := s.publisher.PublishEvent(ctx, payload); err != nil {
			slog.Warn("Failed to publish event, delivering locally only", "post_id", post.ID, "error", err)
			s.hub.Broadcast(payload)
		}
		return
	}

	s.hub.Broadcast(payload)
}

// ReplayEvent delivers an event received from a peer instance to the local
// subscribers without re-persisting it.
func (s *Service) ReplayEvent(payload []byte) {
	s.hub.Broadcast(payload)
}

// ListRecentPosts returns posts ordered newest first.
func (s *Service) ListRecentPosts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	if filter.Sentiment != "" && !filter.Sentiment.Valid() {
		return nil, errors.ValidationError(
			fmt.Sprintf("unknown sentiment filter %q", filter.Sentiment))
	}

	posts, err := s.posts.ListRecent(ctx, filter)
	if err != nil {
		return nil, errors.InternalError("failed to list posts", err)
	}
	return posts, nil
}

// GetDashboardStats recomputes analytics from every post that carries a
// sentiment result. No caching; the dataset is small enough to aggregate
// per request.
func (s *Service) GetDashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	posts, err := s.posts.ListWithSentiment(ctx)
	if err != nil {
		return nil, errors.InternalError("failed to load posts for analytics", err)
	}
	stats := s.aggregator.Aggregate(posts)
	return &stats, nil
}
