package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	googleTTSURL = "https://translate.google.com/translate_tts"
	// MaxChunkRunes is the longest text the endpoint accepts per request.
	MaxChunkRunes = 100
)

// GoogleClient implements the Client interface with the Google Translate
// speech endpoint.
type GoogleClient struct {
	baseURL    string
	lang       string
	slow       bool
	httpClient *http.Client
}

// GoogleConfig holds configuration for the Google Translate client.
type GoogleConfig struct {
	BaseURL  string // defaults to the public endpoint
	Language string // e.g., "es"
	Slow     bool
}

// NewGoogleClient creates a new Google Translate speech client.
func NewGoogleClient(cfg GoogleConfig) *GoogleClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = googleTTSURL
	}
	lang := cfg.Language
	if lang == "" {
		lang = "es"
	}
	return &GoogleClient{
		baseURL:    baseURL,
		lang:       lang,
		slow:       cfg.Slow,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Synthesize fetches every chunk of text in order and concatenates the MP3
// frames.
func (c *GoogleClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	chunks := SplitText(text, MaxChunkRunes)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("nothing to synthesize")
	}

	var out bytes.Buffer
	for i, chunk := range chunks {
		audio, err := c.fetch(ctx, chunk, i, len(chunks))
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		out.Write(audio)
	}
	return out.Bytes(), nil
}

func (c *GoogleClient) fetch(ctx context.Context, chunk string, idx, total int) ([]byte, error) {
	speed := "1"
	if c.slow {
		speed = "0.3"
	}
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", c.lang)
	q.Set("q", chunk)
	q.Set("idx", fmt.Sprint(idx))
	q.Set("total", fmt.Sprint(total))
	q.Set("textlen", fmt.Sprint(utf8.RuneCountInString(chunk)))
	q.Set("ttsspeed", speed)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://translate.google.com/")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("google tts error: %s - %s", resp.Status, string(respBody))
	}
	return io.ReadAll(resp.Body)
}

// SplitText breaks text into pieces of at most max runes, cutting at spaces
// where possible. Words longer than max are split hard.
func SplitText(text string, max int) []string {
	var chunks []string
	var cur []rune
	flush := func() {
		if s := strings.TrimSpace(string(cur)); s != "" {
			chunks = append(chunks, s)
		}
		cur = cur[:0]
	}

	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > max {
			flush()
			chunks = append(chunks, string(w[:max]))
			w = w[max:]
		}
		if len(cur) > 0 && len(cur)+1+len(w) > max {
			flush()
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, w...)
	}
	flush()
	return chunks
}
