package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/riteshubale-01/Vortexa-2.0/internal/domain"
	"github.com/riteshubale-01/Vortexa-2.0/internal/metrics"
)

const systemInstruction = `You are a sentiment analysis expert. Analyze the given text and respond only with a JSON object containing: sentiment (Positive/Neutral/Negative), confidence (0-1), explanation (one line). Example: {"sentiment": "Positive", "confidence": 0.85, "explanation": "The text expresses happiness and satisfaction."}`

// chatCompleter is the slice of the OpenAI client used here, extracted for tests.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClassifier asks a chat model for a structured sentiment verdict and
// degrades to the heuristic fallback on any failure. It never returns an
// error to the caller and never retries: one failed call per request is the
// budget.
type OpenAIClassifier struct {
	client   chatCompleter
	model    string
	fallback domain.Classifier
}

func NewOpenAIClassifier(apiKey, model string, timeout time.Duration, fallback domain.Classifier) *OpenAIClassifier {
	config := openai.DefaultConfig(apiKey)
	config.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIClassifier{
		client:   openai.NewClientWithConfig(config),
		model:    model,
		fallback: fallback,
	}
}

type remoteVerdict struct {
	Sentiment   string   `json:"sentiment"`
	Confidence  *float64 `json:"confidence"`
	Explanation string   `json:"explanation"`
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) domain.SentimentResult {
	result, err := c.classifyRemote(ctx, text)
	if err != nil {
		slog.Warn("Remote sentiment classification failed, using fallback", "error", err)
		metrics.ClassificationsTotal.WithLabelValues("fallback").Inc()
		return c.fallback.Classify(ctx, text)
	}

	metrics.ClassificationsTotal.WithLabelValues("remote").Inc()
	return result
}

func (c *OpenAIClassifier) classifyRemote(ctx context.Context, text string) (domain.SentimentResult, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.2,
		MaxTokens:   100,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: "Analyze the sentiment of this text: " + text},
		},
	})
	metrics.ClassificationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ClassificationFailuresTotal.WithLabelValues("request").Inc()
		return domain.SentimentResult{}, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		metrics.ClassificationFailuresTotal.WithLabelValues("empty").Inc()
		return domain.SentimentResult{}, fmt.Errorf("chat completion returned no choices")
	}

	var verdict remoteVerdict
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &verdict); err != nil {
		metrics.ClassificationFailuresTotal.WithLabelValues("parse").Inc()
		return domain.SentimentResult{}, fmt.Errorf("parse model response: %w", err)
	}

	label := domain.SentimentLabel(verdict.Sentiment)
	if !label.Valid() {
		metrics.ClassificationFailuresTotal.WithLabelValues("validation").Inc()
		return domain.SentimentResult{}, fmt.Errorf("invalid sentiment label %q", verdict.Sentiment)
	}
	if verdict.Confidence == nil || *verdict.Confidence < 0 || *verdict.Confidence > 1 {
		metrics.ClassificationFailuresTotal.WithLabelValues("validation").Inc()
		return domain.SentimentResult{}, fmt.Errorf("confidence out of range")
	}

	return domain.SentimentResult{
		Label:       label,
		Confidence:  *verdict.Confidence,
		Explanation: verdict.Explanation,
	}, nil
}
