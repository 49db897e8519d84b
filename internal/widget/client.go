package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
)

// ErrStatus is returned for any non-2xx response.
var ErrStatus = errors.New("unexpected status")

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
	Level   string `json:"level"`
	Topic   string `json:"topic"`
}

// ChatReply is the body of a successful POST /api/chat. Either Message
// (optionally with Audio) or Error is set.
type ChatReply struct {
	Message string `json:"message,omitempty"`
	Audio   string `json:"audio,omitempty"`
	Error   string `json:"error,omitempty"`
}

// API is the tutoring server as seen by the controller.
type API interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatReply, error)
	Reset(ctx context.Context) error
}

// Client talks to the tutoring server over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL. The client keeps
// the session cookie between calls.
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return NewClientWithHTTP(baseURL, &http.Client{Jar: jar})
}

// NewClientWithHTTP uses the given http.Client as is.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
	}
}

// Chat posts a message and decodes the reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	resp, err := c.post(ctx, "/api/chat", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reply ChatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode chat reply: %w", err)
	}
	return &reply, nil
}

// Reset clears the server-side conversation.
func (c *Client) Reset(ctx context.Context) error {
	resp, err := c.post(ctx, "/api/reset", nil)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("post %s: %w: %s - %s", path, ErrStatus, resp.Status, strings.TrimSpace(string(respBody)))
	}
	return resp, nil
}
