package httpapi

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/optimalbrew/espChat/internal/eventlog"
	"github.com/optimalbrew/espChat/internal/llm"
	"github.com/optimalbrew/espChat/internal/store"
	"github.com/optimalbrew/espChat/internal/tts"
	"go.uber.org/zap"
)

type RouterConfig struct {
	// Session cookie
	SessionSecret string
	SessionTTL    time.Duration
	SecureCookie  bool // set the Secure flag (behind TLS)

	// Directory holding widget.wasm and wasm_exec.js; empty disables /static/
	StaticDir string
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Catalog  *llm.Catalog
	LLM      llm.Client
	TTS      tts.Client // nil disables audio
	Store    store.Store
	EventLog *eventlog.Logger
}

type Router struct {
	cfg      RouterConfig
	logger   *zap.Logger
	catalog  *llm.Catalog
	llm      llm.Client
	tts      tts.Client
	store    store.Store
	eventLog *eventlog.Logger
	sessions *sessionManager
	validate *validator.Validate
	page     *template.Template
	mux      *http.ServeMux
}

func NewRouter(cfg RouterConfig, logger *zap.Logger, deps Deps) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog := deps.Catalog
	if catalog == nil {
		catalog = llm.DefaultCatalog()
	}
	page, err := parsePage()
	if err != nil {
		return nil, err
	}

	r := &Router{
		cfg:      cfg,
		logger:   logger,
		catalog:  catalog,
		llm:      deps.LLM,
		tts:      deps.TTS,
		store:    deps.Store,
		eventLog: deps.EventLog,
		sessions: newSessionManager(cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookie),
		validate: newValidator(),
		page:     page,
		mux:      http.NewServeMux(),
	}

	r.routes()
	return withSentryRecovery(withCORS(r.mux)), nil
}

func (r *Router) routes() {
	// Health check
	r.mux.HandleFunc("GET /healthz", r.handleHealthz)

	// Page and widget assets
	r.mux.HandleFunc("GET /{$}", r.handleIndex)
	if r.cfg.StaticDir != "" {
		r.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(r.cfg.StaticDir))))
	}

	// Conversation API (session cookie, no auth)
	r.mux.HandleFunc("POST /api/chat", r.handleChat)
	r.mux.HandleFunc("POST /api/reset", r.handleReset)
}

func (r *Router) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func withSentryRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(req)
				hub.RecoverWithContext(req.Context(), err)
				hub.Flush(2 * time.Second)
				http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, req)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// captureError sends an error to Sentry with request context
func captureError(req *http.Request, err error, msg string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(req)
		scope.SetExtra("message", msg)
		sentry.CaptureException(err)
	})
}
