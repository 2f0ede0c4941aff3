package services

import (
	"context"
	"sync"

	"guesser/models"
)

// stubStore wraps MemoryStore and lets tests fail individual operations.
type stubStore struct {
	*MemoryStore

	mu        sync.Mutex
	appendErr func(role models.Role) error
	readErr   error
	appends   []models.Turn
}

func newStubStore() *stubStore {
	return &stubStore{MemoryStore: NewMemoryStore()}
}

func (s *stubStore) Append(ctx context.Context, conversationID string, role models.Role, content string) error {
	s.mu.Lock()
	fail := s.appendErr
	s.mu.Unlock()
	if fail != nil {
		if err := fail(role); err != nil {
			return err
		}
	}
	if err := s.MemoryStore.Append(ctx, conversationID, role, content); err != nil {
		return err
	}
	s.mu.Lock()
	s.appends = append(s.appends, models.Turn{ConversationID: conversationID, Role: role, Content: content})
	s.mu.Unlock()
	return nil
}

func (s *stubStore) ReadAll(ctx context.Context, conversationID string) ([]models.Turn, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.MemoryStore.ReadAll(ctx, conversationID)
}

func (s *stubStore) seed(conversationID string, n int) {
	for i := 0; i < n; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAI
		}
		_ = s.MemoryStore.Append(context.Background(), conversationID, role, "seed")
	}
}

// stubCompleter records every request it receives.
type stubCompleter struct {
	mu           sync.Mutex
	requests     []CompletionRequest
	completeFunc func(ctx context.Context, req CompletionRequest) (string, error)
}

func (c *stubCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()
	if c.completeFunc != nil {
		return c.completeFunc(ctx, req)
	}
	return "Is it a mammal?", nil
}

func (c *stubCompleter) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}
