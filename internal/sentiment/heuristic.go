package sentiment

import (
	"context"
	"strings"

	"github.com/riteshubale-01/Vortexa-2.0/internal/domain"
)

// Word lists for the rule-based fallback. Matching is by substring, so
// "like" also matches inside "unlikely"; that mirrors the production
// behavior this classifier replaces and keeps results stable across paths.
var positiveWords = []string{
	"good", "great", "awesome", "amazing", "excellent", "wonderful", "fantastic",
	"love", "like", "happy", "joy", "excited", "perfect", "best", "brilliant",
	"outstanding", "superb", "delighted", "pleased", "satisfied", "grateful",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "horrible", "worst", "hate", "dislike", "sad",
	"angry", "frustrated", "disappointed", "annoying", "boring", "disgusting",
	"pathetic", "useless", "stupid", "ridiculous", "failure", "broken",
}

const (
	explanationPositive = "Text contains positive language and expressions"
	explanationNegative = "Text contains negative language and expressions"
	explanationNeutral  = "Text appears balanced or neutral in tone"
)

// HeuristicClassifier is the deterministic keyword-count fallback. It is
// also the classifier of record when no remote capability is configured.
type HeuristicClassifier struct{}

func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

func (h *HeuristicClassifier) Classify(_ context.Context, text string) domain.SentimentResult {
	lower := strings.ToLower(text)

	var positive, negative int
	for _, word := range positiveWords {
		if strings.Contains(lower, word) {
			positive++
		}
	}
	for _, word := range negativeWords {
		if strings.Contains(lower, word) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return domain.SentimentResult{
			Label:       domain.SentimentPositive,
			Confidence:  scaledConfidence(positive - negative),
			Explanation: explanationPositive,
		}
	case negative > positive:
		return domain.SentimentResult{
			Label:       domain.SentimentNegative,
			Confidence:  scaledConfidence(negative - positive),
			Explanation: explanationNegative,
		}
	default:
		return domain.SentimentResult{
			Label:       domain.SentimentNeutral,
			Confidence:  0.7,
			Explanation: explanationNeutral,
		}
	}
}

// scaledConfidence maps a word-count margin to [0.6, 0.9].
func scaledConfidence(margin int) float64 {
	confidence := 0.6 + 0.1*float64(margin)
	if confidence > 0.9 {
		return 0.9
	}
	return confidence
}
