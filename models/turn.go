package models

import (
	"time"
)

type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Speaker is the label a turn is rendered with in a prompt.
func (r Role) Speaker() string {
	if r == RoleUser {
		return "User"
	}
	return "AI"
}

// Turn is one stored utterance. Turns are never updated or deleted.
type Turn struct {
	ID             string    `json:"-" bson:"-"`
	ConversationID string    `json:"id" bson:"id"`
	Role           Role      `json:"role" bson:"role"`
	Content        string    `json:"content" bson:"content"`
	Seq            string    `json:"-" bson:"seq"`
	CreatedAt      time.Time `json:"-" bson:"created_at"`
}
