package services

import (
	"context"
	"fmt"
	"strings"

	"guesser/config"
	"guesser/models"
)

// ConversationStore is an append-only log of turns keyed by conversation id.
//
// ReadAll returns turns oldest first and an empty slice for an unknown id.
// A completed Append must be visible to a following ReadAll.
type ConversationStore interface {
	Append(ctx context.Context, conversationID string, role models.Role, content string) error
	ReadAll(ctx context.Context, conversationID string) ([]models.Turn, error)
	Close(ctx context.Context) error
}

// NewConversationStore opens the backend selected by cfg.Driver. The returned
// store holds one shared connection for the life of the process.
func NewConversationStore(ctx context.Context, cfg config.StoreConfig) (ConversationStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "dynamodb", "dynamo":
		return NewDynamoDBStore(ctx, cfg)
	case "mongodb", "mongo":
		return NewMongoStore(ctx, cfg)
	case "postgres", "postgresql":
		return NewPostgresStore(ctx, cfg)
	case "memory", "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
