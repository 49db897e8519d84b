package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// ErrUnknownBackend is returned by Open for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Message is one stored conversation turn.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Store keeps per-session conversation history.
type Store interface {
	History(ctx context.Context, session string) ([]Message, error)
	Append(ctx context.Context, session string, msgs ...Message) error
	Reset(ctx context.Context, session string) error
}

// Config selects a backend.
type Config struct {
	Backend string // "memory" (default), "postgres" or "redis"
	TTL     time.Duration
	DB      *pgxpool.Pool
	Redis   *redis.Client
}

// Open returns the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemory(cfg.TTL), nil
	case "postgres":
		if cfg.DB == nil {
			return nil, errors.New("postgres store needs DATABASE_URL")
		}
		s := NewPostgres(cfg.DB)
		if err := s.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return s, nil
	case "redis":
		if cfg.Redis == nil {
			return nil, errors.New("redis store needs REDIS_URL")
		}
		return NewRedis(cfg.Redis, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
