package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleSpeaker(t *testing.T) {
	assert.Equal(t, "User", RoleUser.Speaker())
	assert.Equal(t, "AI", RoleAI.Speaker())
	assert.Equal(t, "AI", Role("assistant").Speaker())
}

func TestConversationWithoutLatest(t *testing.T) {
	conv := Conversation{ID: "c1", Turns: []Turn{
		{Role: RoleUser, Content: "yes"},
		{Role: RoleAI, Content: "Is it red?"},
		{Role: RoleUser, Content: "yes"},
	}}

	prior := conv.WithoutLatest("yes")
	assert.Equal(t, []Turn{
		{Role: RoleUser, Content: "yes"},
		{Role: RoleAI, Content: "Is it red?"},
	}, prior)
	assert.Equal(t, 3, conv.Len(), "conversation itself is untouched")
}

func TestConversationWithoutLatestInterleaved(t *testing.T) {
	// another request appended after ours
	conv := Conversation{Turns: []Turn{
		{Role: RoleUser, Content: "mine"},
		{Role: RoleUser, Content: "theirs"},
	}}
	assert.Equal(t, []Turn{{Role: RoleUser, Content: "theirs"}}, conv.WithoutLatest("mine"))
}

func TestConversationWithoutLatestMissing(t *testing.T) {
	assert.Empty(t, Conversation{}.WithoutLatest("anything"))

	conv := Conversation{Turns: []Turn{{Role: RoleAI, Content: "x"}}}
	assert.Equal(t, conv.Turns, conv.WithoutLatest("x"), "ai turns are never dropped")
}
