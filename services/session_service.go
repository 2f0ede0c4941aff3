package services

import (
	"context"
	"strings"

	"guesser/models"

	"github.com/rs/zerolog"
)

const (
	DefaultTurnCap = 20
	StumpedMessage = "You've stumped me, let's try again!"
)

// stopSequences keep the model from writing a fresh "You are ..." preamble.
var stopSequences = []string{"You are"}

// Sampling is passed through to the completion service unchanged.
type Sampling struct {
	Temperature float32
	TopP        float32
	MaxTokens   int
}

type SessionOption func(*SessionService)

func WithTurnCap(n int) SessionOption {
	return func(s *SessionService) {
		if n > 0 {
			s.turnCap = n
		}
	}
}

func WithSampling(sp Sampling) SessionOption {
	return func(s *SessionService) { s.sampling = sp }
}

func WithLogger(log zerolog.Logger) SessionOption {
	return func(s *SessionService) { s.log = log }
}

func WithMetrics(m *Metrics) SessionOption {
	return func(s *SessionService) { s.metrics = m }
}

// SessionService runs one request/response cycle of the game. It holds no
// per-conversation state; concurrent requests for the same id may interleave.
type SessionService struct {
	store     ConversationStore
	completer Completer
	log       zerolog.Logger
	metrics   *Metrics
	turnCap   int
	sampling  Sampling
}

func NewSessionService(store ConversationStore, completer Completer, opts ...SessionOption) *SessionService {
	s := &SessionService{
		store:     store,
		completer: completer,
		log:       zerolog.Nop(),
		turnCap:   DefaultTurnCap,
		sampling:  Sampling{Temperature: 1, TopP: 1},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ContinueConversation records userInput and returns the next AI line.
//
// The cap counts every stored turn including the one just written for
// userInput. Once it reaches turnCap the fixed StumpedMessage is recorded and
// returned without calling the completion service.
func (s *SessionService) ContinueConversation(ctx context.Context, conversationID, userInput string) (string, error) {
	if strings.TrimSpace(conversationID) == "" {
		return "", ErrConversationIDRequired
	}

	if err := s.append(ctx, conversationID, models.RoleUser, userInput); err != nil {
		return "", err
	}

	conv := s.loadConversation(ctx, conversationID)
	prior := conv.WithoutLatest(userInput)
	prompt := BuildPrompt(prior, userInput)

	log := s.log.With().Str("conversation_id", conversationID).Int("turns", conv.Len()).Logger()

	if s.Exhausted(conv) {
		log.Info().Msg("turn cap reached")
		s.metrics.exhaustedReply()
		if err := s.append(ctx, conversationID, models.RoleAI, StumpedMessage); err != nil {
			return "", err
		}
		return StumpedMessage, nil
	}

	reply, err := s.completer.Complete(ctx, CompletionRequest{
		Prompt:      prompt,
		Stop:        stopSequences,
		Temperature: s.sampling.Temperature,
		TopP:        s.sampling.TopP,
		MaxTokens:   s.sampling.MaxTokens,
	})
	if err == nil {
		reply = strings.TrimSpace(reply)
		if reply == "" {
			err = upstreamErr("empty reply")
		}
	}
	s.metrics.completion(err == nil)
	if err != nil {
		log.Error().Err(err).Msg("completion failed")
		return "", err
	}

	if err := s.append(ctx, conversationID, models.RoleAI, reply); err != nil {
		return "", err
	}
	return reply, nil
}

// Conversation reads the stored turns for conversationID.
func (s *SessionService) Conversation(ctx context.Context, conversationID string) (models.Conversation, error) {
	turns, err := s.store.ReadAll(ctx, conversationID)
	if err != nil {
		return models.Conversation{ID: conversationID}, err
	}
	return models.Conversation{ID: conversationID, Turns: turns}, nil
}

// Exhausted reports whether conv has reached the turn cap.
func (s *SessionService) Exhausted(conv models.Conversation) bool {
	return conv.Len() >= s.turnCap
}

// loadConversation falls back to an empty history when the store read fails.
func (s *SessionService) loadConversation(ctx context.Context, conversationID string) models.Conversation {
	conv, err := s.Conversation(ctx, conversationID)
	if err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("history unavailable, continuing as new conversation")
		return models.Conversation{ID: conversationID}
	}
	return conv
}

func (s *SessionService) append(ctx context.Context, conversationID string, role models.Role, content string) error {
	if err := s.store.Append(ctx, conversationID, role, content); err != nil {
		s.log.Error().Err(err).Str("conversation_id", conversationID).Str("role", string(role)).Msg("failed to save turn")
		return err
	}
	s.metrics.turnAppended(string(role))
	return nil
}
