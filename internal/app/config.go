package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	LogLevel    string
	LogFile     string
	Environment string
	SentryDSN   string
	StaticDir   string
	CatalogPath string

	// Session cookie
	SessionSecret string
	SessionTTL    time.Duration

	// LLM provider
	LLMProvider       string
	LLMTimeoutSeconds int
	OllamaBaseURL     string
	OllamaModel       string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string

	// Speech synthesis
	TTSProvider      string
	TTSLanguage      string
	ElevenLabsAPIKey string
	TTSVoiceID       string // ElevenLabs voice ID
	TTSStability     float64
	TTSSimilarity    float64
	TTSCacheTTL      time.Duration

	// Conversation storage
	StoreBackend string
	DatabaseURL  string
	RedisURL     string
}

func LoadConfigFromEnv() Config {
	return Config{
		HTTPAddr:    getenv("HTTP_ADDR", ":5000"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFile:     getenv("LOG_FILE", ""),
		Environment: getenv("ENVIRONMENT", "development"),
		SentryDSN:   getenv("SENTRY_DSN", ""),
		StaticDir:   getenv("STATIC_DIR", "web/static"),
		CatalogPath: getenv("CATALOG_PATH", ""),

		SessionSecret: getenv("SESSION_SECRET", "spanish-learning-app-secret"),
		SessionTTL:    getenvDuration("SESSION_TTL", 24*time.Hour),

		LLMProvider:       getenv("LLM_PROVIDER", "ollama"),
		LLMTimeoutSeconds: getenvIntClamped("LLM_TIMEOUT_SECONDS", 60, 5, 600),
		OllamaBaseURL:     getenv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:       getenv("OLLAMA_MODEL", "llama3.2"),
		OpenAIAPIKey:      getenv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getenv("OPENAI_BASE_URL", ""),
		OpenAIModel:       getenv("OPENAI_MODEL", "gpt-4o-mini"),

		TTSProvider:      getenv("TTS_PROVIDER", "google"),
		TTSLanguage:      getenv("TTS_LANGUAGE", "es"),
		ElevenLabsAPIKey: getenv("ELEVENLABS_API_KEY", ""),
		TTSVoiceID:       getenv("TTS_VOICE_ID", ""),
		TTSStability:     getenvFloatClamped("TTS_STABILITY", 0.5, 0.0, 1.0),
		TTSSimilarity:    getenvFloatClamped("TTS_SIMILARITY", 0.75, 0.0, 1.0),
		TTSCacheTTL:      getenvDuration("TTS_CACHE_TTL", time.Hour),

		StoreBackend: getenv("STORE_BACKEND", "memory"),
		DatabaseURL:  getenv("DATABASE_URL", ""),
		RedisURL:     getenv("REDIS_URL", ""),
	}
}

// Production reports whether logs should use the JSON encoder.
func (c Config) Production() bool {
	return c.Environment == "production"
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getenvIntClamped parses an int, falling back to def when unset or invalid.
func getenvIntClamped(k string, def, min, max int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// getenvFloatClamped parses a float, falling back to def when unset or
// invalid.
func getenvFloatClamped(k string, def, min, max float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(k), 64)
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// getenvDuration parses a Go duration; "0" disables whatever it configures.
func getenvDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}
