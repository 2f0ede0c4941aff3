package services

import (
	"context"
	"sync"

	"guesser/models"
)

// MemoryStore keeps turns in process memory. Used for tests and local runs.
type MemoryStore struct {
	mu    sync.RWMutex
	convs map[string][]models.Turn
	seq   *sequencer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		convs: make(map[string][]models.Turn),
		seq:   newSequencer(),
	}
}

func (s *MemoryStore) Append(ctx context.Context, conversationID string, role models.Role, content string) error {
	if err := ctx.Err(); err != nil {
		return storageErr("append", err)
	}
	seq, now, err := s.seq.Next()
	if err != nil {
		return storageErr("append", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[conversationID] = append(s.convs[conversationID], models.Turn{
		ID:             newTurnID(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Seq:            seq,
		CreatedAt:      now,
	})
	return nil
}

func (s *MemoryStore) ReadAll(ctx context.Context, conversationID string) ([]models.Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("read", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.convs[conversationID]
	out := make([]models.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *MemoryStore) Close(_ context.Context) error { return nil }

// Len reports how many turns are stored for conversationID.
func (s *MemoryStore) Len(conversationID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.convs[conversationID])
}

var _ ConversationStore = (*MemoryStore)(nil)
