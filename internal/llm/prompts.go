package llm

import (
	"fmt"
	"strings"
)

// HistoryWindow is how many stored messages are replayed to the model.
const HistoryWindow = 5

const (
	// FallbackReply is used when the provider answered without text.
	FallbackReply = "Lo siento, no puedo responder en este momento."
	// TechnicalProblemReply is used when the provider could not be reached.
	TechnicalProblemReply = "Lo siento, tuve un problema técnico. Por favor, inténtalo de nuevo."
)

// SystemPrompt builds the tutor instructions for a level and topic.
func (c *Catalog) SystemPrompt(level, topic string) string {
	return fmt.Sprintf(`%s

You're having a conversation in Spanish about %s.
Respond in Spanish, keep your responses natural and conversational.
Use appropriate Spanish vocabulary and grammar for the %s level.
Keep responses concise (2-4 sentences).`,
		c.LevelInstruction(level), c.TopicDescription(topic), level)
}

// BuildConversation assembles the next turn from stored history.
func (c *Catalog) BuildConversation(level, topic string, history []Message, user string) Conversation {
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}
	return Conversation{
		System:  c.SystemPrompt(level, topic),
		History: history,
		User:    user,
	}
}

// RenderPrompt flattens a conversation for completion-style models.
func RenderPrompt(conv Conversation) string {
	var b strings.Builder
	b.WriteString(conv.System)
	b.WriteString("\n\n")
	for _, m := range conv.History {
		if m.Role == "user" {
			b.WriteString("User: ")
		} else {
			b.WriteString("Assistant: ")
		}
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(conv.User)
	b.WriteString("\nAssistant:")
	return b.String()
}
