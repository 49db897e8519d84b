package eventlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// EventType represents the type of tutoring event
type EventType string

const (
	EventChatReceived      EventType = "chat_received"
	EventLLMCompleted      EventType = "llm_completed"
	EventLLMError          EventType = "llm_error"
	EventTTSCompleted      EventType = "tts_completed"
	EventTTSError          EventType = "tts_error"
	EventConversationReset EventType = "conversation_reset"
)

// Logger records events to the conversation_events table.
type Logger struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// New creates a new event logger. A nil pool disables recording.
func New(db *pgxpool.Pool, logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{db: db, logger: logger}
}

// Enabled reports whether events are written anywhere.
func (l *Logger) Enabled() bool {
	return l != nil && l.db != nil
}

// Log writes an event to the database synchronously
func (l *Logger) Log(ctx context.Context, sessionID string, eventType EventType, data map[string]any) error {
	if !l.Enabled() || sessionID == "" {
		return nil // Silently skip if no DB or session
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		dataJSON = []byte("{}")
	}

	_, err = l.db.Exec(ctx, `
		INSERT INTO conversation_events (session_id, event_type, event_data)
		VALUES ($1, $2, $3)
	`, sessionID, string(eventType), dataJSON)

	return err
}

// LogAsync logs an event without blocking the caller
func (l *Logger) LogAsync(sessionID string, eventType EventType, data map[string]any) {
	if !l.Enabled() || sessionID == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := l.Log(ctx, sessionID, eventType, data); err != nil {
			l.logger.Warn("eventlog: write failed",
				zap.String("event", string(eventType)),
				zap.Error(err))
		}
	}()
}
