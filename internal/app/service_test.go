package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riteshubale-01/Vortexa-2.0/internal/analytics"
	"github.com/riteshubale-01/Vortexa-2.0/internal/auth"
	"github.com/riteshubale-01/Vortexa-2.0/internal/domain"
	apperrors "github.com/riteshubale-01/Vortexa-2.0/internal/errors"
	"github.com/riteshubale-01/Vortexa-2.0/internal/moderation"
)

type fakePostRepo struct {
	posts     []domain.Post
	insertErr error
}

func (r *fakePostRepo) Insert(_ context.Context, post *domain.Post) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.posts = append(r.posts, *post)
	return nil
}

func (r *fakePostRepo) ListRecent(_ context.Context, _ domain.PostFilter) ([]domain.Post, error) {
	return r.posts, nil
}

func (r *fakePostRepo) ListWithSentiment(_ context.Context) ([]domain.Post, error) {
	var tagged []domain.Post
	for _, p := range r.posts {
		if p.Sentiment != nil {
			tagged = append(tagged, p)
		}
	}
	return tagged, nil
}

type fakeUserRepo struct {
	users     map[uuid.UUID]*domain.User
	insertErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Insert(_ context.Context, user *domain.User) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type fakeHub struct {
	payloads [][]byte
}

func (h *fakeHub) Broadcast(payload []byte) {
	h.payloads = append(h.payloads, payload)
}

type staticClassifier struct {
	result domain.SentimentResult
}

func (c staticClassifier) Classify(context.Context, string) domain.SentimentResult {
	return c.result
}

type rejectAll struct {
	reason string
}

func (m rejectAll) Moderate(context.Context, string) moderation.Verdict {
	return moderation.Verdict{Allowed: false, Reason: m.reason}
}

type fixture struct {
	svc   *Service
	posts *fakePostRepo
	users *fakeUserRepo
	hub   *fakeHub
	clock *clockwork.FakeClock
}

func newFixture(t *testing.T, opts ...func(*fixture)) *fixture {
	t.Helper()

	f := &fixture{
		posts: &fakePostRepo{},
		users: newFakeUserRepo(),
		hub:   &fakeHub{},
		clock: clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	}

	classifier := staticClassifier{result: domain.SentimentResult{
		Label:       domain.SentimentPositive,
		Confidence:  0.8,
		Explanation: "Text contains positive language and expressions",
	}}
	authSvc := auth.NewService("test-secret-0123456789", time.Hour, f.clock)

	f.svc = NewService(f.posts, f.users, classifier, moderation.AllowAll{}, authSvc,
		f.hub, nil, analytics.NewAggregator(), f.clock)

	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TestSubmitPost_PersistsAndBroadcasts(t *testing.T) {
	f := newFixture(t)
	author := domain.Identity{ID: uuid.New(), Username: "alice"}

	post, err := f.svc.SubmitPost(context.Background(), "Great day", "I love this place", author)
	require.NoError(t, err)

	require.NotNil(t, post.Sentiment)
	assert.Equal(t, domain.SentimentPositive, post.Sentiment.Label)
	assert.Equal(t, domain.SourceUser, post.Source)
	assert.Equal(t, "alice", post.AuthorUsername)
	assert.Equal(t, f.clock.Now().UTC(), post.CreatedAt)

	require.Len(t, f.posts.posts, 1)
	require.Len(t, f.hub.payloads, 1)

	var event struct {
		Type string       `json:"type"`
		Post PostResponse `json:"post"`
	}
	require.NoError(t, json.Unmarshal(f.hub.payloads[0], &event))
	assert.Equal(t, "new_post", event.Type)
	assert.Equal(t, post.ID, event.Post.ID)
	assert.Equal(t, "alice", event.Post.AuthorUsername)
	require.NotNil(t, event.Post.Sentiment)
	assert.Equal(t, domain.SentimentPositive, event.Post.Sentiment.Label)
}

func TestSubmitPost_RejectsEmptyInput(t *testing.T) {
	f := newFixture(t)
	author := domain.Identity{ID: uuid.New(), Username: "alice"}

	_, err := f.svc.SubmitPost(context.Background(), "  ", "body", author)
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeValidation, apperrors.AsStructuredError(err).Type)

	_, err = f.svc.SubmitPost(context.Background(), "title", "", author)
	require.Error(t, err)
	assert.Empty(t, f.posts.posts)
}

func TestSubmitPost_ModerationRejection(t *testing.T) {
	f := newFixture(t)
	f.svc.moderator = rejectAll{reason: "abusive"}
	author := domain.Identity{ID: uuid.New(), Username: "alice"}

	_, err := f.svc.SubmitPost(context.Background(), "title", "body", author)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrContentRejected))
	assert.Empty(t, f.posts.posts)
	assert.Empty(t, f.hub.payloads)
}

func TestSubmitPost_PersistenceFailureIsHard(t *testing.T) {
	f := newFixture(t)
	f.posts.insertErr = errors.New("connection refused")
	author := domain.Identity{ID: uuid.New(), Username: "alice"}

	_, err := f.svc.SubmitPost(context.Background(), "title", "body", author)
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeInternal, apperrors.AsStructuredError(err).Type)
	assert.Empty(t, f.hub.payloads, "no event for a post that was not stored")
}

func TestIngestPost_SkipsModeration(t *testing.T) {
	f := newFixture(t)
	f.svc.moderator = rejectAll{reason: "abusive"}

	post, err := f.svc.IngestPost(context.Background(), "World news", "Something happened", "r/worldnews")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceReddit, post.Source)
	assert.Equal(t, "r/worldnews", post.AuthorUsername)
	assert.Equal(t, uuid.Nil, post.AuthorID)
	require.Len(t, f.hub.payloads, 1)
}

type fakePublisher struct {
	payloads [][]byte
	err      error
}

func (p *fakePublisher) PublishEvent(_ context.Context, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func TestSubmitPost_PublishesInsteadOfLocalBroadcast(t *testing.T) {
	f := newFixture(t)
	publisher := &fakePublisher{}
	f.svc.publisher = publisher
	author := domain.Identity{ID: uuid.New(), Username: "alice"}

	_, err := f.svc.SubmitPost(context.Background(), "title", "body", author)
	require.NoError(t, err)

	require.Len(t, publisher.payloads, 1)
	assert.Empty(t, f.hub.payloads, "pub/sub replay handles local delivery")
}

func TestSubmitPost_FallsBackToLocalOnPublishError(t *testing.T) {
	f := newFixture(t)
	f.svc.publisher = &fakePublisher{err: errors.New("redis down")}
	author := domain.Identity{ID: uuid.New(), Username: "alice"}

	_, err := f.svc.SubmitPost(context.Background(), "title", "body", author)
	require.NoError(t, err)
	require.Len(t, f.hub.payloads, 1)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	user, token, err := f.svc.Register(context.Background(), "alice", "Alice@Example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "alice@example.com", user.Email)

	loggedIn, token2, err := f.svc.Login(context.Background(), "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token2)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, _, err = f.svc.Login(context.Background(), "alice@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeUnauthorized, apperrors.AsStructuredError(err).Type)
}

func TestLogin_UnknownEmailMatchesWrongPassword(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Login(context.Background(), "nobody@example.com", "whatever")
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeUnauthorized, apperrors.AsStructuredError(err).Type)
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "short")
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeValidation, apperrors.AsStructuredError(err).Type)
}

func TestRegister_ConflictMapping(t *testing.T) {
	f := newFixture(t)
	f.users.insertErr = domain.ErrEmailTaken

	_, _, err := f.svc.Register(context.Background(), "alice", "alice@example.com", "hunter2hunter2")
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeConflict, apperrors.AsStructuredError(err).Type)
}

func TestListRecentPosts_RejectsUnknownSentiment(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListRecentPosts(context.Background(), domain.PostFilter{Sentiment: "Angry"})
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeValidation, apperrors.AsStructuredError(err).Type)
}

func TestGetDashboardStats_AggregatesStoredPosts(t *testing.T) {
	f := newFixture(t)
	author := domain.Identity{ID: uuid.New(), Username: "alice"}

	_, err := f.svc.SubmitPost(context.Background(), "Great day", "I love this place", author)
	require.NoError(t, err)
	_, err = f.svc.SubmitPost(context.Background(), "Another one", "wonderful weather today", author)
	require.NoError(t, err)

	stats, err := f.svc.GetDashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.SentimentDistribution[domain.SentimentPositive])
	assert.Equal(t, 0, stats.SentimentDistribution[domain.SentimentNegative])
	require.Len(t, stats.SentimentOverTime, 1)
	assert.Equal(t, 2, stats.SentimentOverTime[0].Positive)
}
