package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencerMonotonicWithinMillisecond(t *testing.T) {
	s := newSequencer()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	prev := ""
	for i := 0; i < 100; i++ {
		key, at, err := s.Next()
		require.NoError(t, err)
		assert.Equal(t, fixed, at)
		assert.Len(t, key, 26)
		assert.Greater(t, key, prev)
		prev = key
	}
}

func TestNewTurnIDUnique(t *testing.T) {
	assert.NotEqual(t, newTurnID(), newTurnID())
}
