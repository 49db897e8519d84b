package tts

import (
	"context"
	"fmt"
	"time"
)

// Client defines the interface for text-to-speech providers.
type Client interface {
	// Synthesize converts text to speech and returns MP3 audio data.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider   string // "google" (default), "elevenlabs" or "none"
	Google     GoogleConfig
	ElevenLabs ElevenLabsConfig
	CacheTTL   time.Duration // zero disables caching
}

// New returns the configured provider, or nil when speech is disabled.
func New(cfg Config) (Client, error) {
	var c Client
	switch cfg.Provider {
	case "", "google":
		c = NewGoogleClient(cfg.Google)
	case "elevenlabs":
		if cfg.ElevenLabs.APIKey == "" {
			return nil, fmt.Errorf("elevenlabs provider needs ELEVENLABS_API_KEY")
		}
		c = NewElevenLabsClient(cfg.ElevenLabs)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown tts provider %q", cfg.Provider)
	}
	if cfg.CacheTTL > 0 {
		c = NewCached(c, cfg.CacheTTL)
	}
	return c, nil
}
