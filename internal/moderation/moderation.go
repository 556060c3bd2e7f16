// Package moderation gates post content through an optional remote check.
// When no capability is configured, or the remote call fails in any way,
// content is allowed: moderation degrades open, it never blocks posting by
// being unavailable.
package moderation

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const moderationPrompt = `Is the following post abusive, vulgar, or sensitive?
If yes, reply: {"allowed": false, "reason": "..."}
If no, reply: {"allowed": true}

Post: `

// Verdict is the outcome of a moderation check.
type Verdict struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// Moderator decides whether content may be posted.
type Moderator interface {
	Moderate(ctx context.Context, text string) Verdict
}

// AllowAll is the moderator used when the capability is not configured.
type AllowAll struct{}

func (AllowAll) Moderate(context.Context, string) Verdict {
	return Verdict{Allowed: true}
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIModerator asks a chat model for a yes/no verdict.
type OpenAIModerator struct {
	client chatCompleter
	model  string
}

func NewOpenAIModerator(apiKey, model string, timeout time.Duration) *OpenAIModerator {
	config := openai.DefaultConfig(apiKey)
	config.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIModerator{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (m *OpenAIModerator) Moderate(ctx context.Context, text string) Verdict {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     m.model,
		MaxTokens: 60,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: moderationPrompt + text},
		},
	})
	if err != nil {
		slog.Warn("Moderation call failed, allowing content", "error", err)
		return Verdict{Allowed: true}
	}
	if len(resp.Choices) == 0 {
		return Verdict{Allowed: true}
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &verdict); err != nil {
		slog.Warn("Moderation response unparseable, allowing content", "error", err)
		return Verdict{Allowed: true}
	}
	return verdict
}
