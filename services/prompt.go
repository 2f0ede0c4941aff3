package services

import (
	"strings"

	"guesser/models"
)

const personaInstruction = "You are an AI-powered guessing game similar to Akinator. Your goal is to guess the character, object, or animal based on the user's answers to your questions.\n\n"

// BuildPrompt renders history (oldest first) followed by userInput as one
// prompt string. It has no side effects.
func BuildPrompt(history []models.Turn, userInput string) string {
	var b strings.Builder
	b.WriteString(personaInstruction)
	writeTurns(&b, history)
	writeLine(&b, models.RoleUser, userInput)
	return b.String()
}

// RenderTranscript renders turns the way they appear inside a prompt.
func RenderTranscript(turns []models.Turn) string {
	var b strings.Builder
	writeTurns(&b, turns)
	return b.String()
}

func writeTurns(b *strings.Builder, turns []models.Turn) {
	for _, t := range turns {
		writeLine(b, t.Role, t.Content)
	}
}

func writeLine(b *strings.Builder, role models.Role, content string) {
	b.WriteString(role.Speaker())
	b.WriteString(": ")
	b.WriteString(content)
	b.WriteByte('\n')
}
