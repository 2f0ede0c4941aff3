package controllers

import (
	"context"
	"errors"
	"net/http"

	"guesser/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	msgConversationIDRequired = "Conversation ID is required"
	msgInternalError          = "An error occurred while processing your request"
)

// Conversations is the part of SessionService the controller needs.
type Conversations interface {
	ContinueConversation(ctx context.Context, conversationID, userInput string) (string, error)
}

type ConversationController struct {
	sessions Conversations
	log      zerolog.Logger
}

func NewConversationController(sessions Conversations, log zerolog.Logger) *ConversationController {
	return &ConversationController{sessions: sessions, log: log}
}

type continueRequest struct {
	ConversationID string `json:"conversationId"`
	UserInput      string `json:"userInput"`
}

// ContinueConversation handles POST /continue-conversation. Every failure
// from the session layer is answered here; nothing propagates further.
func (cc *ConversationController) ContinueConversation(c *gin.Context) {
	var request continueRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgConversationIDRequired})
		return
	}

	message, err := cc.sessions.ContinueConversation(c.Request.Context(), request.ConversationID, request.UserInput)
	if err != nil {
		if errors.Is(err, services.ErrConversationIDRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgConversationIDRequired})
			return
		}
		cc.log.Error().Err(err).Str("conversation_id", request.ConversationID).Msg("continue conversation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// Recovery turns panics into the same generic 500 body.
func (cc *ConversationController) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		cc.log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msgInternalError})
	})
}
