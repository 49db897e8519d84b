package llm

import (
	"context"
	"errors"
	"fmt"
)

// Message represents a conversation message.
type Message struct {
	Role    string // "user", "assistant"
	Content string
}

// Conversation is everything a provider needs to produce the next tutor
// turn.
type Conversation struct {
	System  string
	History []Message
	User    string
}

// Client defines the interface for LLM providers.
type Client interface {
	// Reply returns the tutor's next message for the conversation.
	Reply(ctx context.Context, conv Conversation) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string // "ollama" (default) or "openai"
	Ollama   OllamaConfig
	OpenAI   OpenAIConfig
}

// New returns the provider named by cfg.Provider.
func New(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaClient(cfg.Ollama), nil
	case "openai":
		if cfg.OpenAI.APIKey == "" && cfg.OpenAI.BaseURL == "" {
			return nil, errors.New("openai provider needs OPENAI_API_KEY or OPENAI_BASE_URL")
		}
		return NewOpenAIClient(cfg.OpenAI), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
