package domain

import "context"

// SentimentLabel is the three-valued sentiment classification.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNeutral  SentimentLabel = "Neutral"
	SentimentNegative SentimentLabel = "Negative"
)

// Valid reports whether the label is one of the three allowed values.
func (l SentimentLabel) Valid() bool {
	switch l {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// SentimentResult is attached to exactly one post and never mutated.
// Confidence is always within [0, 1].
type SentimentResult struct {
	Label       SentimentLabel `json:"label"`
	Confidence  float64        `json:"confidence"`
	Explanation string         `json:"explanation"`
}

// Classifier produces a sentiment result for a piece of text.
// Implementations never fail outward: any remote error degrades to a
// deterministic local result.
type Classifier interface {
	Classify(ctx context.Context, text string) SentimentResult
}
