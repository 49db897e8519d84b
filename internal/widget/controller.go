// Package widget is the conversation widget controller: it sends what the
// learner types to the tutoring server, renders the transcript and hands
// spoken replies to the audio player.
package widget

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	// GenericFailure is shown when the server could not be reached or
	// answered with something unusable.
	GenericFailure = "Failed to get a response. Please try again."
	// Greeting seeds a fresh transcript.
	Greeting = "Start a conversation..."
)

// View is the page the controller drives.
type View interface {
	// AppendEntry adds an entry at the end of the transcript and scrolls
	// it into view.
	AppendEntry(e Entry)
	ClearTranscript()
	ClearInput()
	SetLoading(loading bool)
}

// Audio is the part of the audio player the controller uses.
type Audio interface {
	Start(payload string) error
	Stop()
}

// Controller mediates between the form, the server and the transcript.
type Controller struct {
	api    API
	view   View
	audio  Audio
	logger *zap.Logger

	// mu guards the request state; viewMu keeps view updates in order.
	mu         sync.Mutex
	pending    bool
	generation uint64
	viewMu     sync.Mutex
}

func NewController(api API, view View, audio Audio, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		api:    api,
		view:   view,
		audio:  audio,
		logger: logger,
	}
}

// Pending reports whether a chat request is in flight.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// SubmitMessage sends text with the selected level and topic and renders
// the outcome. It blocks until the request settles. Empty text, or a
// submission while another is pending, is ignored and reported as false.
func (c *Controller) SubmitMessage(ctx context.Context, text, level, topic string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		c.logger.Debug("chat: submission ignored, request pending")
		return false
	}
	c.pending = true
	gen := c.generation
	c.mu.Unlock()

	c.AppendEntry(RoleUser, text)
	c.withView(func(v View) {
		v.ClearInput()
		v.SetLoading(true)
	})

	reply, err := c.api.Chat(ctx, ChatRequest{Message: text, Level: level, Topic: topic})

	c.mu.Lock()
	stale := gen != c.generation
	if !stale {
		c.pending = false
	}
	c.mu.Unlock()

	if stale {
		c.logger.Debug("chat: dropping reply for a conversation that was reset")
		return true
	}
	defer c.withView(func(v View) { v.SetLoading(false) })

	switch {
	case err != nil:
		c.logger.Error("chat: request failed", zap.Error(err))
		c.appendError(GenericFailure)
	case reply.Message != "":
		c.AppendEntry(RoleAssistant, reply.Message)
		if reply.Audio != "" && c.audio != nil {
			if err := c.audio.Start(reply.Audio); err != nil {
				c.logger.Error("chat: audio not started", zap.Error(err))
			}
		}
	case reply.Error != "":
		c.appendError(reply.Error)
	default:
		c.logger.Error("chat: reply has neither message nor error")
		c.appendError(GenericFailure)
	}
	return true
}

// ResetConversation clears the server-side history and, when that
// succeeds, the transcript and audio. A request still in flight no longer
// blocks new submissions; its reply is dropped. Failures are only logged.
func (c *Controller) ResetConversation(ctx context.Context) {
	if err := c.api.Reset(ctx); err != nil {
		c.logger.Error("reset: request failed", zap.Error(err))
		return
	}

	c.mu.Lock()
	c.generation++
	c.pending = false
	c.mu.Unlock()

	c.withView(func(v View) {
		v.SetLoading(false)
		v.ClearTranscript()
		v.AppendEntry(Entry{Role: RoleSystem, HTML: RenderContent(Greeting)})
	})
	if c.audio != nil {
		c.audio.Stop()
	}
}

// AppendEntry renders content as an entry for role.
func (c *Controller) AppendEntry(role Role, content string) {
	e := Entry{Role: role, HTML: RenderContent(content)}
	c.withView(func(v View) { v.AppendEntry(e) })
}

func (c *Controller) appendError(content string) {
	e := Entry{Role: RoleSystem, HTML: RenderContent(content), Error: true}
	c.withView(func(v View) { v.AppendEntry(e) })
}

func (c *Controller) withView(fn func(View)) {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()
	fn(c.view)
}
