package services

import (
	"context"
	"errors"
	"math"
	"net/http"

	"guesser/config"

	"github.com/sashabaranov/go-openai"
)

// OpenAICompleter calls the chat completions API through go-openai. The
// whole prompt is sent as a single user message.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

func NewOpenAICompleter(cfg config.OpenAIConfig) *OpenAICompleter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &OpenAICompleter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Stop:        req.Stop,
		Temperature: nonZero(req.Temperature),
		TopP:        nonZero(req.TopP),
		MaxTokens:   req.MaxTokens,
		N:           1,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", upstreamErr("openai status %d: %w", apiErr.HTTPStatusCode, err)
		}
		return "", upstreamErr("openai: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", upstreamErr("no choices in response")
	}
	if resp.Choices[0].Message.Content == "" {
		return "", upstreamErr("no content in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// nonZero keeps an explicit 0 from being dropped by go-openai's omitempty tags.
func nonZero(v float32) float32 {
	if v == 0 {
		return math.SmallestNonzeroFloat32
	}
	return v
}

var _ Completer = (*OpenAICompleter)(nil)
