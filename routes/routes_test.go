package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"guesser/config"
	"guesser/middlewares"
	"guesser/models"
	"guesser/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCompleter struct {
	prompts []string
	reply   string
}

func (c *recordingCompleter) Complete(_ context.Context, req services.CompletionRequest) (string, error) {
	c.prompts = append(c.prompts, req.Prompt)
	return c.reply, nil
}

type testServer struct {
	router    *gin.Engine
	store     *services.MemoryStore
	completer *recordingCompleter
}

func newTestServer(t *testing.T, limiter *middlewares.FixedWindowLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	store := services.NewMemoryStore()
	completer := &recordingCompleter{reply: "Is it a mammal?"}
	reg := prometheus.NewRegistry()
	sessions := services.NewSessionService(store, completer, services.WithMetrics(services.NewMetrics(reg)))

	router, err := SetupRouter(Deps{
		Config:        cfg,
		Log:           zerolog.Nop(),
		Conversations: sessions,
		Gatherer:      reg,
		Limiter:       limiter,
	})
	require.NoError(t, err)
	return &testServer{router: router, store: store, completer: completer}
}

func (s *testServer) post(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/continue-conversation", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://mindguesser.com")
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func TestContinueConversationEndToEnd(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.post(`{"conversationId":"c1","userInput":"Is it alive?"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Is it a mammal?"}`, rr.Body.String())
	assert.Equal(t, "https://mindguesser.com", rr.Header().Get("Access-Control-Allow-Origin"))

	require.Len(t, s.completer.prompts, 1)
	assert.True(t, strings.HasSuffix(s.completer.prompts[0], "\n\nUser: Is it alive?\n"))

	turns, err := s.store.ReadAll(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, models.Turn{ConversationID: "c1", Role: models.RoleUser, Content: "Is it alive?"},
		models.Turn{ConversationID: turns[0].ConversationID, Role: turns[0].Role, Content: turns[0].Content})
	assert.Equal(t, models.RoleAI, turns[1].Role)
	assert.Equal(t, "Is it a mammal?", turns[1].Content)
}

func TestContinueConversationMissingIDNoSideEffects(t *testing.T) {
	s := newTestServer(t, nil)

	for _, body := range []string{`{"userInput":"hi"}`, `{"conversationId":"","userInput":"hi"}`} {
		rr := s.post(body)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"Conversation ID is required"}`, rr.Body.String())
	}
	assert.Empty(t, s.completer.prompts)
	assert.Zero(t, s.store.Len(""))
}

func TestContinueConversationStumped(t *testing.T) {
	s := newTestServer(t, nil)
	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, s.post(`{"conversationId":"c1","userInput":"no"}`).Code)
	}
	assert.Equal(t, 20, s.store.Len("c1"))
	assert.Len(t, s.completer.prompts, 10)

	rr := s.post(`{"conversationId":"c1","userInput":"no"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"You've stumped me, let's try again!"}`, rr.Body.String())
	assert.Len(t, s.completer.prompts, 10)
}

func TestRateLimited(t *testing.T) {
	s := newTestServer(t, middlewares.NewFixedWindowLimiter(2, 15*time.Minute))

	assert.Equal(t, http.StatusOK, s.post(`{"conversationId":"c1","userInput":"a"}`).Code)
	assert.Equal(t, http.StatusOK, s.post(`{"conversationId":"c1","userInput":"b"}`).Code)

	rr := s.post(`{"conversationId":"c1","userInput":"c"}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "Too many requests from this IP, please try again after 15 minutes", rr.Body.String())
	assert.Equal(t, 4, s.store.Len("c1"))
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	s.post(`{"conversationId":"c1","userInput":"a"}`)

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	s.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `mindguesser_turns_appended_total{role="user"} 1`)
	assert.Contains(t, rr.Body.String(), `mindguesser_completions_total{outcome="ok"} 1`)
}
