package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/optimalbrew/espChat/internal/eventlog"
	"github.com/optimalbrew/espChat/internal/llm"
	"github.com/optimalbrew/espChat/internal/store"
	"go.uber.org/zap"
)

// ErrorReply is the tutor's answer when a request could not be processed.
const ErrorReply = "Lo siento, ha ocurrido un error."

// maxChatBody bounds the request body; the message itself is validated
// separately.
const maxChatBody = 64 << 10

type chatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
	Level   string `json:"level" validate:"omitempty,max=64"`
	Topic   string `json:"topic" validate:"omitempty,max=64"`
}

type chatResponse struct {
	Message string `json:"message"`
	Audio   string `json:"audio,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeChatError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Message: ErrorReply})
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage turns validator output into a short client message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " is required"
		case "max":
			return fe.Field() + " is too long"
		}
		return fe.Field() + " is invalid"
	}
	return "invalid request"
}

func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	sessionID, err := r.session(w, req)
	if err != nil {
		r.logger.Error("chat: session issue failed", zap.Error(err))
		captureError(req, err, "session issue failed")
		writeChatError(w, http.StatusInternalServerError, "An error occurred while processing your request")
		return
	}

	var body chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxChatBody)).Decode(&body); err != nil {
		writeChatError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	body.Message = strings.TrimSpace(body.Message)
	if err := r.validate.Struct(body); err != nil {
		writeChatError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	level := body.Level
	if level == "" {
		level = r.catalog.DefaultLevel
	}
	topic := body.Topic
	if topic == "" {
		topic = r.catalog.DefaultTopic
	}

	log := r.logger.With(zap.String("session", sessionID))
	log.Debug("chat: received", zap.String("level", level), zap.String("topic", topic))
	r.eventLog.LogAsync(sessionID, eventlog.EventChatReceived, map[string]any{
		"level":       level,
		"topic":       topic,
		"text_length": len(body.Message),
	})

	history, err := r.store.History(ctx, sessionID)
	if err != nil {
		log.Error("chat: load history failed", zap.Error(err))
		captureError(req, err, "load history failed")
		writeChatError(w, http.StatusInternalServerError, "An error occurred while processing your request")
		return
	}

	reply := r.reply(req, log, sessionID, r.catalog.BuildConversation(level, topic, toLLMMessages(history), body.Message))
	audio := r.synthesize(req, log, sessionID, reply)

	err = r.store.Append(ctx, sessionID,
		store.Message{Role: "user", Content: body.Message},
		store.Message{Role: "assistant", Content: reply},
	)
	if err != nil {
		log.Error("chat: save history failed", zap.Error(err))
		captureError(req, err, "save history failed")
		writeChatError(w, http.StatusInternalServerError, "An error occurred while processing your request")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Message: reply, Audio: audio})
}

// reply asks the model for the tutor's answer. Provider failures become an
// apology so the learner still gets a turn.
func (r *Router) reply(req *http.Request, log *zap.Logger, sessionID string, conv llm.Conversation) string {
	start := time.Now()
	text, err := r.llm.Reply(req.Context(), conv)
	latency := time.Since(start)
	if err != nil {
		log.Error("chat: llm failed", zap.Error(err), zap.Duration("latency", latency))
		captureError(req, err, "llm reply failed")
		r.eventLog.LogAsync(sessionID, eventlog.EventLLMError, map[string]any{
			"error":      err.Error(),
			"latency_ms": latency.Milliseconds(),
		})
		return llm.TechnicalProblemReply
	}
	log.Debug("chat: llm replied", zap.Duration("latency", latency), zap.Int("length", len(text)))
	r.eventLog.LogAsync(sessionID, eventlog.EventLLMCompleted, map[string]any{
		"latency_ms":    latency.Milliseconds(),
		"response_text": text,
	})
	return text
}

// synthesize returns base64 MP3 for text, or "" when speech is disabled or
// fails.
func (r *Router) synthesize(req *http.Request, log *zap.Logger, sessionID, text string) string {
	if r.tts == nil {
		return ""
	}
	start := time.Now()
	audio, err := r.tts.Synthesize(req.Context(), text)
	latency := time.Since(start)
	if err != nil {
		log.Warn("tts: synthesis failed", zap.Error(err))
		r.eventLog.LogAsync(sessionID, eventlog.EventTTSError, map[string]any{
			"error": err.Error(),
		})
		return ""
	}
	r.eventLog.LogAsync(sessionID, eventlog.EventTTSCompleted, map[string]any{
		"latency_ms": latency.Milliseconds(),
		"bytes":      len(audio),
	})
	return base64.StdEncoding.EncodeToString(audio)
}

func (r *Router) handleReset(w http.ResponseWriter, req *http.Request) {
	sessionID, err := r.session(w, req)
	if err != nil {
		r.logger.Error("reset: session issue failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := r.store.Reset(req.Context(), sessionID); err != nil {
		r.logger.Error("reset: clear history failed", zap.String("session", sessionID), zap.Error(err))
		captureError(req, err, "reset failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reset conversation"})
		return
	}
	r.eventLog.LogAsync(sessionID, eventlog.EventConversationReset, nil)

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func toLLMMessages(history []store.Message) []llm.Message {
	out := make([]llm.Message, len(history))
	for i, m := range history {
		out[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	return out
}
