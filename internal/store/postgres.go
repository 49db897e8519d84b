package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps history in the conversation_messages table.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the tables used by the store and the event log.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS conversation_messages (
			id         BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS conversation_messages_session_idx
			ON conversation_messages (session_id, id);
		CREATE TABLE IF NOT EXISTS conversation_events (
			id         BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			event_data JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

func (s *Postgres) History(ctx context.Context, session string) ([]Message, error) {
	rows, err := s.db.Query(ctx, `
		SELECT role, content
		FROM conversation_messages
		WHERE session_id = $1
		ORDER BY id
	`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Append stores msgs in one transaction so a turn is never half written.
func (s *Postgres) Append(ctx context.Context, session string, msgs ...Message) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, m := range msgs {
		_, err := tx.Exec(ctx, `
			INSERT INTO conversation_messages (session_id, role, content)
			VALUES ($1, $2, $3)
		`, session, m.Role, m.Content)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Postgres) Reset(ctx context.Context, session string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM conversation_messages WHERE session_id = $1
	`, session)
	return err
}
