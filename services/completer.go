package services

import (
	"context"
	"fmt"
	"strings"

	"guesser/config"
)

// CompletionRequest is a single-candidate text completion.
type CompletionRequest struct {
	Prompt      string
	Stop        []string
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// Completer turns a prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

func NewCompleter(cfg config.OpenAIConfig) (Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "sdk", "openai", "":
		return NewOpenAICompleter(cfg), nil
	case "http", "resty":
		return NewHTTPCompleter(cfg), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}
