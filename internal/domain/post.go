package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Post source values.
const (
	SourceUser   = "user"
	SourceReddit = "reddit"
)

// Post is created once at submission time and never mutated.
// Sentiment is populated before persistence for new posts; posts written
// before sentiment analysis existed may lack it.
type Post struct {
	ID             uuid.UUID
	Title          string
	Body           string
	AuthorID       uuid.UUID
	AuthorUsername string
	CreatedAt      time.Time
	Sentiment      *SentimentResult
	Source         string
}

// PostFilter narrows ListRecent results.
type PostFilter struct {
	Sentiment SentimentLabel // zero value means no filter
	Limit     int
}

type PostRepository interface {
	Insert(ctx context.Context, post *Post) error
	// ListRecent returns posts ordered by created_at descending.
	ListRecent(ctx context.Context, filter PostFilter) ([]Post, error)
	// ListWithSentiment returns every post that carries a sentiment result,
	// in no particular order.
	ListWithSentiment(ctx context.Context) ([]Post, error)
}
