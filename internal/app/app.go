package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/optimalbrew/espChat/internal/eventlog"
	"github.com/optimalbrew/espChat/internal/httpapi"
	"github.com/optimalbrew/espChat/internal/llm"
	"github.com/optimalbrew/espChat/internal/store"
	"github.com/optimalbrew/espChat/internal/tts"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type App struct {
	cfg      Config
	logger   *zap.Logger
	db       *pgxpool.Pool
	rdb      *redis.Client
	catalog  *llm.Catalog
	llm      llm.Client
	tts      tts.Client
	store    store.Store
	eventLog *eventlog.Logger
}

func New(cfg Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.cfg

	catalog, err := llm.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	a.catalog = catalog

	if cfg.DatabaseURL != "" {
		db, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		a.db = db
		if err := db.Ping(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		// The event table is created alongside the message table.
		if err := store.NewPostgres(db).EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	if cfg.StoreBackend == "redis" {
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis store")
		}
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		a.rdb = redis.NewClient(opt)
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
	}

	a.store, err = store.Open(ctx, store.Config{
		Backend: cfg.StoreBackend,
		TTL:     cfg.SessionTTL,
		DB:      a.db,
		Redis:   a.rdb,
	})
	if err != nil {
		return err
	}
	a.eventLog = eventlog.New(a.db, a.logger)

	a.llm, err = llm.New(llm.Config{
		Provider: cfg.LLMProvider,
		Ollama: llm.OllamaConfig{
			BaseURL: cfg.OllamaBaseURL,
			Model:   cfg.OllamaModel,
			Timeout: time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		},
		OpenAI: llm.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		},
	})
	if err != nil {
		return err
	}

	a.tts, err = tts.New(tts.Config{
		Provider: cfg.TTSProvider,
		Google:   tts.GoogleConfig{Language: cfg.TTSLanguage},
		ElevenLabs: tts.ElevenLabsConfig{
			APIKey:     cfg.ElevenLabsAPIKey,
			VoiceID:    cfg.TTSVoiceID,
			Stability:  cfg.TTSStability,
			Similarity: cfg.TTSSimilarity,
		},
		CacheTTL: cfg.TTSCacheTTL,
	})
	if err != nil {
		return err
	}

	a.logger.Info("app: initialized",
		zap.String("llm", cfg.LLMProvider),
		zap.String("tts", cfg.TTSProvider),
		zap.String("store", cfg.StoreBackend),
		zap.Bool("eventlog", a.eventLog.Enabled()))
	return nil
}

func (a *App) Router() (http.Handler, error) {
	routerCfg := httpapi.RouterConfig{
		SessionSecret: a.cfg.SessionSecret,
		SessionTTL:    a.cfg.SessionTTL,
		SecureCookie:  a.cfg.Production(),
		StaticDir:     a.cfg.StaticDir,
	}
	return httpapi.NewRouter(routerCfg, a.logger, httpapi.Deps{
		Catalog:  a.catalog,
		LLM:      a.llm,
		TTS:      a.tts,
		Store:    a.store,
		EventLog: a.eventLog,
	})
}

func (a *App) Close() error {
	var err error
	if a.rdb != nil {
		err = a.rdb.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	return err
}
