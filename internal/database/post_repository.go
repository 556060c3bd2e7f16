package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/riteshubale-01/Vortexa-2.0/internal/domain"
	"github.com/riteshubale-01/Vortexa-2.0/internal/metrics"
)

const defaultListLimit = 100

// postColumns must match the scan order in scanPost.
const postColumns = `id, title, body, author_id, author_username, created_at, sentiment_label, sentiment_confidence, sentiment_explanation, source`

// PostRepo implements domain.PostRepository backed by PostgreSQL.
type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (r *PostRepo) Insert(ctx context.Context, post *domain.Post) error {
	var label, explanation *string
	var confidence *float64
	if post.Sentiment != nil {
		l := string(post.Sentiment.Label)
		label = &l
		confidence = &post.Sentiment.Confidence
		explanation = &post.Sentiment.Explanation
	}

	var authorID any
	if post.AuthorID != uuid.Nil {
		authorID = post.AuthorID
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO posts (`+postColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, post.ID, post.Title, post.Body, authorID, post.AuthorUsername, post.CreatedAt,
		label, confidence, explanation, post.Source)
	if err != nil {
		metrics.DBErrorsTotal.WithLabelValues("insert_post").Inc()
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (r *PostRepo) ListRecent(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	args := []any{}
	if filter.Sentiment != "" {
		query += ` WHERE sentiment_label = $1`
		args = append(args, string(filter.Sentiment))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		metrics.DBErrorsTotal.WithLabelValues("list_recent_posts").Inc()
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

func (r *PostRepo) ListWithSentiment(ctx context.Context) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+postColumns+` FROM posts WHERE sentiment_label IS NOT NULL`)
	if err != nil {
		metrics.DBErrorsTotal.WithLabelValues("list_posts_with_sentiment").Inc()
		return nil, fmt.Errorf("failed to list posts with sentiment: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

func scanPosts(rows pgx.Rows) ([]domain.Post, error) {
	var posts []domain.Post
	for rows.Next() {
		var post domain.Post
		var label, explanation *string
		var confidence *float64
		var authorID *uuid.UUID

		err := rows.Scan(
			&post.ID, &post.Title, &post.Body, &authorID, &post.AuthorUsername,
			&post.CreatedAt, &label, &confidence, &explanation, &post.Source,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}

		if authorID != nil {
			post.AuthorID = *authorID
		}
		if label != nil && confidence != nil && explanation != nil {
			post.Sentiment = &domain.SentimentResult{
				Label:       domain.SentimentLabel(*label),
				Confidence:  *confidence,
				Explanation: *explanation,
			}
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}
	return posts, nil
}
