package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewElevenLabsClient_DefaultValues(t *testing.T) {
	// -1 means "use default" since 0.0 is a valid setting
	client := NewElevenLabsClient(ElevenLabsConfig{
		APIKey:     "test-key",
		Stability:  -1, // Sentinel for "use default"
		Similarity: -1, // Sentinel for "use default"
	})

	if client.voiceID != "21m00Tcm4TlvDq8ikWAM" {
		t.Errorf("voiceID = %q, want %q", client.voiceID, "21m00Tcm4TlvDq8ikWAM")
	}
	if client.modelID != "eleven_multilingual_v2" {
		t.Errorf("modelID = %q, want %q", client.modelID, "eleven_multilingual_v2")
	}
	if client.stability != 0.5 {
		t.Errorf("stability = %f, want %f", client.stability, 0.5)
	}
	if client.similarity != 0.75 {
		t.Errorf("similarity = %f, want %f", client.similarity, 0.75)
	}
}

func TestNewElevenLabsClient_CustomStability(t *testing.T) {
	client := NewElevenLabsClient(ElevenLabsConfig{
		APIKey:     "test-key",
		Stability:  0.8,
		Similarity: -1, // Use default for similarity
	})

	if client.stability != 0.8 {
		t.Errorf("stability = %f, want %f", client.stability, 0.8)
	}
	// Similarity should still be default
	if client.similarity != 0.75 {
		t.Errorf("similarity = %f, want %f", client.similarity, 0.75)
	}
}

func TestNewElevenLabsClient_CustomSimilarityOnly(t *testing.T) {
	client := NewElevenLabsClient(ElevenLabsConfig{
		APIKey:     "test-key",
		Stability:  -1, // Use default for stability
		Similarity: 0.9,
	})

	// Stability should still be default
	if client.stability != 0.5 {
		t.Errorf("stability = %f, want %f", client.stability, 0.5)
	}
	if client.similarity != 0.9 {
		t.Errorf("similarity = %f, want %f", client.similarity, 0.9)
	}
}

func TestNewElevenLabsClient_CustomBoth(t *testing.T) {
	client := NewElevenLabsClient(ElevenLabsConfig{
		APIKey:     "test-key",
		Stability:  0.3,
		Similarity: 0.6,
	})

	if client.stability != 0.3 {
		t.Errorf("stability = %f, want %f", client.stability, 0.3)
	}
	if client.similarity != 0.6 {
		t.Errorf("similarity = %f, want %f", client.similarity, 0.6)
	}
}

func TestNewElevenLabsClient_ZeroValuesAreValid(t *testing.T) {
	client := NewElevenLabsClient(ElevenLabsConfig{
		APIKey:     "test-key",
		Stability:  0,
		Similarity: 0,
	})

	if client.stability != 0 {
		t.Errorf("stability = %f, want %f (zero is valid)", client.stability, 0.0)
	}
	if client.similarity != 0 {
		t.Errorf("similarity = %f, want %f (zero is valid)", client.similarity, 0.0)
	}
}

func TestNewElevenLabsClient_CustomVoiceAndModel(t *testing.T) {
	client := NewElevenLabsClient(ElevenLabsConfig{
		APIKey:  "test-key",
		VoiceID: "custom-voice-id",
		ModelID: "custom-model-id",
	})

	if client.voiceID != "custom-voice-id" {
		t.Errorf("voiceID = %q, want %q", client.voiceID, "custom-voice-id")
	}
	if client.modelID != "custom-model-id" {
		t.Errorf("modelID = %q, want %q", client.modelID, "custom-model-id")
	}
}

func TestElevenLabsSynthesize(t *testing.T) {
	var got ttsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voice-1" {
			t.Errorf("path = %q, want /voice-1", r.URL.Path)
		}
		if f := r.URL.Query().Get("output_format"); f != "mp3_44100_128" {
			t.Errorf("output_format = %q, want mp3_44100_128", f)
		}
		if k := r.Header.Get("xi-api-key"); k != "test-key" {
			t.Errorf("xi-api-key = %q", k)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3mp3"))
	}))
	defer srv.Close()

	client := NewElevenLabsClient(ElevenLabsConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		VoiceID:    "voice-1",
		Stability:  -1,
		Similarity: -1,
	})
	audio, err := client.Synthesize(context.Background(), "Hola")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(audio) != "ID3mp3" {
		t.Errorf("audio = %q", audio)
	}
	if got.Text != "Hola" || got.VoiceSettings.Stability != 0.5 {
		t.Errorf("request = %+v", got)
	}
}

func TestElevenLabsSynthesize_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewElevenLabsClient(ElevenLabsConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := client.Synthesize(context.Background(), "Hola")
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("err = %v, want API error", err)
	}
}
