package domain

// KeywordCount is a derived trending-keyword entry, recomputed per
// analytics request and never persisted.
type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// TimelineBucket aggregates the posts whose creation timestamp truncates
// to the same UTC hour. Time uses the string-sortable "YYYY-MM-DD HH:00"
// format.
type TimelineBucket struct {
	Time     string `json:"time"`
	Positive int    `json:"Positive"`
	Neutral  int    `json:"Neutral"`
	Negative int    `json:"Negative"`
}

// DashboardStats is the aggregate view over all sentiment-tagged posts.
type DashboardStats struct {
	SentimentDistribution map[SentimentLabel]int `json:"sentiment_distribution"`
	SentimentOverTime     []TimelineBucket       `json:"sentiment_over_time"`
	TrendingKeywords      []KeywordCount         `json:"trending_keywords"`
}
