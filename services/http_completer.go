package services

import (
	"context"
	"net/http"
	"strings"

	"guesser/config"

	"github.com/go-resty/resty/v2"
)

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// HTTPCompleter posts to any OpenAI-compatible /chat/completions endpoint.
type HTTPCompleter struct {
	client *resty.Client
	apiKey string
	model  string
}

func NewHTTPCompleter(cfg config.OpenAIConfig) *HTTPCompleter {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &HTTPCompleter{
		client: client,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

func (c *HTTPCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": req.Prompt,
			},
		},
		"n":      1,
		"stream": false,
	}
	if len(req.Stop) > 0 {
		requestBody["stop"] = req.Stop
	}
	requestBody["temperature"] = req.Temperature
	requestBody["top_p"] = req.TopP
	if req.MaxTokens > 0 {
		requestBody["max_tokens"] = req.MaxTokens
	}

	var result chatCompletionResponse
	var apiErr chatErrorResponse
	r := c.client.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&result).
		SetError(&apiErr)
	if c.apiKey != "" {
		r.SetAuthToken(c.apiKey)
	}

	resp, err := r.Post("/chat/completions")
	if err != nil {
		return "", upstreamErr("request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return "", upstreamErr("status %d: %s", resp.StatusCode(), msg)
	}

	if len(result.Choices) == 0 {
		return "", upstreamErr("no choices in response")
	}
	if result.Choices[0].Message.Content == "" {
		return "", upstreamErr("no content in response")
	}
	return result.Choices[0].Message.Content, nil
}

var _ Completer = (*HTTPCompleter)(nil)

