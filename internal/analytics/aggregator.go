// Package analytics computes dashboard aggregates over sentiment-tagged
// posts. Everything here is a pure function of its input; results are
// recomputed per request and never cached or persisted.
package analytics

import (
	"regexp"
	"sort"
	"strings"

	"github.com/riteshubale-01/Vortexa-2.0/internal/domain"
)

const (
	hourBucketFormat = "2006-01-02 15:00"
	timelineWindow   = 24
	topKeywords      = 10
)

// wordPattern extracts tokens of 4+ word characters on word boundaries.
var wordPattern = regexp.MustCompile(`\b\w{4,}\b`)

// defaultStopWords is the stop-word set used when none is supplied.
var defaultStopWords = []string{
	"this", "that", "with", "have", "will", "been", "from", "they", "them",
	"were", "their", "said", "each", "which", "time", "about", "would",
	"there", "could", "other", "after", "first", "well", "water", "call",
	"who", "its", "now", "find", "long", "down", "day", "did", "get", "has",
	"him", "his", "how", "man", "new", "old", "see", "two", "way", "boy",
	"let", "put", "say", "she", "too", "use",
}

// Aggregator computes the dashboard view: label distribution, hourly
// sentiment timeline, and trending keywords.
type Aggregator struct {
	stopWords map[string]struct{}
}

// NewAggregator creates an aggregator with the default stop-word set.
func NewAggregator() *Aggregator {
	return NewAggregatorWithStopWords(defaultStopWords)
}

// NewAggregatorWithStopWords creates an aggregator with a custom stop-word set.
func NewAggregatorWithStopWords(stopWords []string) *Aggregator {
	set := make(map[string]struct{}, len(stopWords))
	for _, word := range stopWords {
		set[strings.ToLower(word)] = struct{}{}
	}
	return &Aggregator{stopWords: set}
}

// Aggregate computes stats over the given posts. Posts without a sentiment
// result are excluded from every computation. An empty input yields a
// zero-filled distribution and empty timeline and keyword slices.
func (a *Aggregator) Aggregate(posts []domain.Post) domain.DashboardStats {
	tagged := make([]domain.Post, 0, len(posts))
	for _, post := range posts {
		if post.Sentiment != nil {
			tagged = append(tagged, post)
		}
	}

	return domain.DashboardStats{
		SentimentDistribution: a.distribution(tagged),
		SentimentOverTime:     a.timeline(tagged),
		TrendingKeywords:      a.keywords(tagged),
	}
}

func (a *Aggregator) distribution(posts []domain.Post) map[domain.SentimentLabel]int {
	counts := map[domain.SentimentLabel]int{
		domain.SentimentPositive: 0,
		domain.SentimentNeutral:  0,
		domain.SentimentNegative: 0,
	}
	for _, post := range posts {
		counts[post.Sentiment.Label]++
	}
	return counts
}

func (a *Aggregator) timeline(posts []domain.Post) []domain.TimelineBucket {
	buckets := make(map[string]*domain.TimelineBucket)
	for _, post := range posts {
		hour := post.CreatedAt.UTC().Format(hourBucketFormat)
		bucket, ok := buckets[hour]
		if !ok {
			bucket = &domain.TimelineBucket{Time: hour}
			buckets[hour] = bucket
		}
		switch post.Sentiment.Label {
		case domain.SentimentPositive:
			bucket.Positive++
		case domain.SentimentNeutral:
			bucket.Neutral++
		case domain.SentimentNegative:
			bucket.Negative++
		}
	}

	timeline := make([]domain.TimelineBucket, 0, len(buckets))
	for _, bucket := range buckets {
		timeline = append(timeline, *bucket)
	}
	// The hour format is string-sortable, so lexicographic order is
	// chronological order.
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].Time < timeline[j].Time })

	if len(timeline) > timelineWindow {
		timeline = timeline[len(timeline)-timelineWindow:]
	}
	return timeline
}

func (a *Aggregator) keywords(posts []domain.Post) []domain.KeywordCount {
	var builder strings.Builder
	for _, post := range posts {
		builder.WriteString(post.Title)
		builder.WriteByte(' ')
		builder.WriteString(post.Body)
		builder.WriteByte(' ')
	}

	counts := make(map[string]int)
	var order []string
	for _, word := range wordPattern.FindAllString(strings.ToLower(builder.String()), -1) {
		if _, stopped := a.stopWords[word]; stopped {
			continue
		}
		if _, seen := counts[word]; !seen {
			order = append(order, word)
		}
		counts[word]++
	}

	// Stable sort keeps first-encountered order for equal counts.
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })

	if len(order) > topKeywords {
		order = order[:topKeywords]
	}

	keywords := make([]domain.KeywordCount, 0, len(order))
	for _, word := range order {
		keywords = append(keywords, domain.KeywordCount{Word: word, Count: counts[word]})
	}
	return keywords
}
