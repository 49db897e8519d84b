package app

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/optimalbrew/espChat/internal/store"
	"github.com/optimalbrew/espChat/internal/tts"
	"go.uber.org/zap"
)

func baseConfig() Config {
	return Config{
		SessionSecret: "test",
		LLMProvider:   "ollama",
		TTSProvider:   "none",
		StoreBackend:  "memory",
	}
}

func TestNewDefaults(t *testing.T) {
	a, err := New(baseConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if _, ok := a.store.(*store.Memory); !ok {
		t.Errorf("store = %T, want *store.Memory", a.store)
	}
	if a.tts != nil {
		t.Errorf("tts = %T, want nil when disabled", a.tts)
	}
	if a.eventLog.Enabled() {
		t.Error("event log should be disabled without a database")
	}
}

func TestNewCachedSpeech(t *testing.T) {
	cfg := baseConfig()
	cfg.TTSProvider = "google"
	cfg.TTSCacheTTL = time.Hour

	a, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if _, ok := a.tts.(*tts.Cached); !ok {
		t.Errorf("tts = %T, want *tts.Cached", a.tts)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown llm", func(c *Config) { c.LLMProvider = "nope" }},
		{"unknown tts", func(c *Config) { c.TTSProvider = "nope" }},
		{"unknown store", func(c *Config) { c.StoreBackend = "nope" }},
		{"redis without url", func(c *Config) { c.StoreBackend = "redis" }},
		{"postgres without url", func(c *Config) { c.StoreBackend = "postgres" }},
		{"missing catalog", func(c *Config) { c.CatalogPath = filepath.Join(os.TempDir(), "no-such-catalog.yaml") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg, zap.NewNop()); err == nil {
				t.Error("New should fail")
			}
		})
	}
}

func TestRouterServesIndex(t *testing.T) {
	a, err := New(baseConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	h, err := a.Router()
	if err != nil {
		t.Fatalf("Router failed: %v", err)
	}
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if len(body) == 0 {
		t.Error("empty index page")
	}
}
