package services

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// sequencer hands out lexicographically increasing sort keys. Keys from one
// process are strictly increasing even within the same millisecond.
type sequencer struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

func newSequencer() *sequencer {
	return &sequencer{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

func (s *sequencer) Next() (string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	if err != nil {
		return "", time.Time{}, err
	}
	return id.String(), now, nil
}

func newTurnID() string {
	return uuid.New().String()
}
