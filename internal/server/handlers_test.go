package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riteshubale-01/Vortexa-2.0/internal/analytics"
	"github.com/riteshubale-01/Vortexa-2.0/internal/app"
	"github.com/riteshubale-01/Vortexa-2.0/internal/auth"
	"github.com/riteshubale-01/Vortexa-2.0/internal/broadcast"
	"github.com/riteshubale-01/Vortexa-2.0/internal/config"
	"github.com/riteshubale-01/Vortexa-2.0/internal/domain"
	"github.com/riteshubale-01/Vortexa-2.0/internal/moderation"
	"github.com/riteshubale-01/Vortexa-2.0/internal/sentiment"
)

// --- In-memory fakes ---

type memPostRepo struct {
	posts []domain.Post
}

func (r *memPostRepo) Insert(_ context.Context, post *domain.Post) error {
	r.posts = append(r.posts, *post)
	return nil
}

func (r *memPostRepo) ListRecent(_ context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	var out []domain.Post
	for i := len(r.posts) - 1; i >= 0; i-- {
		p := r.posts[i]
		if filter.Sentiment != "" && (p.Sentiment == nil || p.Sentiment.Label != filter.Sentiment) {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *memPostRepo) ListWithSentiment(_ context.Context) ([]domain.Post, error) {
	var out []domain.Post
	for _, p := range r.posts {
		if p.Sentiment != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

type memUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func (r *memUserRepo) Insert(_ context.Context, user *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
		if existing.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

type testServer struct {
	srv   *Server
	hub   *broadcast.Hub
	posts *memPostRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clock := clockwork.NewRealClock()
	cfg := &config.Config{Port: "0", JWTSecret: "test-secret-0123456789", TokenLifetime: time.Hour}

	posts := &memPostRepo{}
	users := &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
	authSvc := auth.NewService(cfg.JWTSecret, cfg.TokenLifetime, clock)
	hub := broadcast.NewHub(clock, 8)
	t.Cleanup(hub.Stop)

	appSvc := app.NewService(posts, users, sentiment.NewHeuristicClassifier(),
		moderation.AllowAll{}, authSvc, hub, nil, analytics.NewAggregator(), clock)

	srv := NewServer(cfg, appSvc, authSvc, hub, stubPinger{}, nil)
	return &testServer{srv: srv, hub: hub, posts: posts}
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = strings.NewReader(string(encoded))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.srv.echo.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) register(t *testing.T, username, email string) string {
	t.Helper()
	rec := ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "email": email, "password": "hunter2hunter2",
	})
	require.Equal(t, 201, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterAndLoginFlow(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "alice", "alice@example.com")

	rec := ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "hunter2hunter2",
	})
	assert.Equal(t, 200, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	assert.Equal(t, 401, rec.Code)
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "alice", "alice@example.com")

	rec := ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "bob", "email": "alice@example.com", "password": "hunter2hunter2",
	})
	assert.Equal(t, 409, rec.Code)
}

func TestCreatePost_RequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/posts", "", map[string]string{
		"title": "Hello", "body": "I love this",
	})
	assert.Equal(t, 401, rec.Code)

	rec = ts.do(http.MethodPost, "/api/posts", "garbage-token", map[string]string{
		"title": "Hello", "body": "I love this",
	})
	assert.Equal(t, 401, rec.Code)
}

func TestCreatePost_AttachesSentiment(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "alice@example.com")

	rec := ts.do(http.MethodPost, "/api/posts", token, map[string]string{
		"title": "Great news", "body": "This is amazing and wonderful",
	})
	require.Equal(t, 201, rec.Code, rec.Body.String())

	var resp app.PostResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.AuthorUsername)
	assert.Equal(t, domain.SourceUser, resp.Source)
	require.NotNil(t, resp.Sentiment)
	assert.Equal(t, domain.SentimentPositive, resp.Sentiment.Label)
}

func TestCreatePost_RejectsEmptyBody(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "alice@example.com")

	rec := ts.do(http.MethodPost, "/api/posts", token, map[string]string{
		"title": "Hello", "body": "",
	})
	assert.Equal(t, 400, rec.Code)
}

func TestListPosts_FilterAndLimit(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "alice@example.com")

	for _, post := range []map[string]string{
		{"title": "Happy", "body": "what a wonderful day"},
		{"title": "Sad", "body": "this is terrible and awful"},
		{"title": "Flat", "body": "the sky exists"},
	} {
		rec := ts.do(http.MethodPost, "/api/posts", token, post)
		require.Equal(t, 201, rec.Code)
	}

	rec := ts.do(http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, 200, rec.Code)
	var all []app.PostResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 3)
	assert.Equal(t, "Flat", all[0].Title, "newest first")

	rec = ts.do(http.MethodGet, "/api/posts?sentiment=Negative", "", nil)
	require.Equal(t, 200, rec.Code)
	var negative []app.PostResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &negative))
	require.Len(t, negative, 1)
	assert.Equal(t, "Sad", negative[0].Title)

	rec = ts.do(http.MethodGet, "/api/posts?limit=1", "", nil)
	require.Equal(t, 200, rec.Code)
	var limited []app.PostResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &limited))
	assert.Len(t, limited, 1)

	rec = ts.do(http.MethodGet, "/api/posts?limit=zero", "", nil)
	assert.Equal(t, 400, rec.Code)

	rec = ts.do(http.MethodGet, "/api/posts?sentiment=Angry", "", nil)
	assert.Equal(t, 400, rec.Code)
}

func TestDashboardStats(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "alice@example.com")

	rec := ts.do(http.MethodPost, "/api/posts", token, map[string]string{
		"title": "Happy", "body": "what a wonderful day",
	})
	require.Equal(t, 201, rec.Code)

	rec = ts.do(http.MethodGet, "/api/dashboard/stats", "", nil)
	require.Equal(t, 200, rec.Code)

	var stats domain.DashboardStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.SentimentDistribution[domain.SentimentPositive])
	assert.Equal(t, 0, stats.SentimentDistribution[domain.SentimentNegative])
	require.Len(t, stats.SentimentOverTime, 1)

	raw := rec.Body.String()
	assert.Contains(t, raw, `"sentiment_distribution"`)
	assert.Contains(t, raw, `"sentiment_over_time"`)
	assert.Contains(t, raw, `"trending_keywords"`)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)

	rec = ts.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ready"`)
}

func TestReadiness_PostgresDown(t *testing.T) {
	ts := newTestServer(t)
	ts.srv.db = stubPinger{err: context.DeadlineExceeded}

	rec := ts.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, 503, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postgres"`)
}

func TestWebSocket_ReceivesNewPostEvents(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "alice", "alice@example.com")

	httpServer := httptest.NewServer(ts.srv.echo)
	defer httpServer.Close()

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Registration is asynchronous; wait until the hub sees the client.
	require.Eventually(t, func() bool {
		return ts.hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	rec := ts.do(http.MethodPost, "/api/posts", token, map[string]string{
		"title": "Hello subscribers", "body": "I love broadcasting",
	})
	require.Equal(t, 201, rec.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type string           `json:"type"`
		Post app.PostResponse `json:"post"`
	}
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, "new_post", event.Type)
	assert.Equal(t, "Hello subscribers", event.Post.Title)
	require.NotNil(t, event.Post.Sentiment)
}
