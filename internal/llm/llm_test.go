package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, "beginner", c.DefaultLevel)
	assert.Equal(t, "greetings", c.DefaultTopic)
	require.Len(t, c.Levels, 3)
	require.Len(t, c.Topics, 8)
	assert.Equal(t, "daily_life", c.Topics[4].Name)
	assert.Contains(t, c.LevelInstruction("advanced"), "advanced learner")
	assert.Equal(t, "traveling, directions, transportation, accommodation, and tourism", c.TopicDescription("travel"))
}

func TestCatalogFallbacks(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, c.LevelInstruction("beginner"), c.LevelInstruction("expert"))
	assert.Equal(t, c.TopicDescription("greetings"), c.TopicDescription("astronomy"))
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "levels: [unclosed"},
		{"no topics", "levels:\n  - name: a\n    instruction: x\n"},
		{"unknown default", "default_level: zzz\nlevels:\n  - name: a\n    instruction: x\ntopics:\n  - name: t\n    description: d\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := "levels:\n  - name: a1\n    instruction: Speak slowly.\ntopics:\n  - name: music\n    description: songs and bands\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, "a1", c.DefaultLevel)
	assert.Equal(t, "music", c.DefaultTopic)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSystemPrompt(t *testing.T) {
	c := DefaultCatalog()
	p := c.SystemPrompt("intermediate", "food")

	assert.True(t, strings.HasPrefix(p, c.LevelInstruction("intermediate")))
	assert.Contains(t, p, "conversation in Spanish about ordering food, discussing cuisine")
	assert.Contains(t, p, "for the intermediate level")
	assert.Contains(t, p, "(2-4 sentences)")
}

func TestSystemPromptKeepsUnknownLevelName(t *testing.T) {
	p := DefaultCatalog().SystemPrompt("expert", "food")
	assert.Contains(t, p, "helping a beginner")
	assert.Contains(t, p, "for the expert level")
}

func TestBuildConversationWindow(t *testing.T) {
	var history []Message
	for i := 0; i < 8; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history = append(history, Message{Role: role, Content: string(rune('a' + i))})
	}

	conv := DefaultCatalog().BuildConversation("beginner", "travel", history, "hola")

	require.Len(t, conv.History, HistoryWindow)
	assert.Equal(t, "d", conv.History[0].Content)
	assert.Equal(t, "h", conv.History[4].Content)
	assert.Equal(t, "hola", conv.User)
}

func TestRenderPrompt(t *testing.T) {
	got := RenderPrompt(Conversation{
		System: "SYS",
		History: []Message{
			{Role: "user", Content: "Hola"},
			{Role: "assistant", Content: "¡Hola! ¿Qué tal?"},
		},
		User: "Bien, gracias",
	})

	want := "SYS\n\nUser: Hola\nAssistant: ¡Hola! ¿Qué tal?\nUser: Bien, gracias\nAssistant:"
	assert.Equal(t, want, got)
}

func TestOllamaReply(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama3.2","response":"  ¡Hola! ¿Cómo estás?  ","done":true}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(OllamaConfig{BaseURL: srv.URL + "/"})
	reply, err := c.Reply(context.Background(), Conversation{System: "SYS", User: "Hola"})

	require.NoError(t, err)
	assert.Equal(t, "¡Hola! ¿Cómo estás?", reply)
	assert.Equal(t, "llama3.2", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, "SYS\n\nUser: Hola\nAssistant:", got.Prompt)
}

func TestOllamaReplyEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"done":true}`))
	}))
	defer srv.Close()

	reply, err := NewOllamaClient(OllamaConfig{BaseURL: srv.URL}).Reply(context.Background(), Conversation{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply)
}

func TestOllamaReplyErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, `model not found`, "ollama error"},
		{"bad json", http.StatusOK, `{"response":`, "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOllamaClient(OllamaConfig{BaseURL: srv.URL}).Reply(context.Background(), Conversation{User: "x"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewOllamaClientDefaults(t *testing.T) {
	c := NewOllamaClient(OllamaConfig{})
	assert.Equal(t, "http://localhost:11434", c.baseURL)
	assert.Equal(t, "llama3.2", c.model)
	assert.Equal(t, "1m0s", c.httpClient.Timeout.String())
}

func TestOpenAIReply(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Muy bien."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "tutor-model"})
	reply, err := c.Reply(context.Background(), Conversation{
		System:  "SYS",
		History: []Message{{Role: "user", Content: "uno"}, {Role: "assistant", Content: "dos"}},
		User:    "tres",
	})

	require.NoError(t, err)
	assert.Equal(t, "Muy bien.", reply)
	assert.Equal(t, "tutor-model", got.Model)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "tres", got.Messages[3].Content)
}

func TestOpenAIReplyNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: srv.URL}).Reply(context.Background(), Conversation{User: "x"})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	c, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, &OllamaClient{}, c)

	c, err = New(Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "k"}})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	_, err = New(Config{Provider: "openai"})
	assert.Error(t, err)

	_, err = New(Config{Provider: "claude"})
	assert.Error(t, err)
}
