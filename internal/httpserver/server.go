// internal/httpserver/server.go
//
// HTTP server wiring for the minesweeper authority.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/mines/schema".
//   - Game endpoints bound to the caller's session: POST /mines/jsonnew, POST /mines/json.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the session cookie works
//     from the VR front end).
//   - Game mutations are serialised by one mutex: load, apply, save.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/Liquidine/bp-r3f/internal/game"
	"github.com/Liquidine/bp-r3f/internal/store"
)

const (
	defaultMaxDimension = 64
	defaultTimeout      = 10 * time.Second
	devSecret           = "dev_secret_change_me"
)

// Config holds the server settings; zero values fall back to defaults.
type Config struct {
	ClientOrigin   string        // allowed CORS origin
	SessionSecret  string        // HS256 key for session cookies
	MaxDimension   int           // upper bound for rows and columns
	RequestTimeout time.Duration // per-request handler budget
	SecureCookies  bool          // Secure + SameSite=None session cookie
}

// Server bundles router, live-game store and settings.
type Server struct {
	r     *chi.Mux
	store store.Store
	cfg   Config

	mu        sync.Mutex // serialises game mutations
	newEngine func(rows, cols, mines int) (*game.Engine, error)
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, cfg Config) *Server {
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = defaultMaxDimension
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultTimeout
	}
	if cfg.ClientOrigin == "" {
		cfg.ClientOrigin = "http://localhost:5173"
	}
	if cfg.SessionSecret == "" {
		log.Warn().Msg("SESSION_SECRET not set; using development secret")
		cfg.SessionSecret = devSecret
	}

	s := &Server{
		r:     chi.NewRouter(),
		store: st,
		cfg:   cfg,
		newEngine: func(rows, cols, mines int) (*game.Engine, error) {
			return game.NewRect(rows, cols, mines)
		},
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                   // add X-Request-ID
	s.r.Use(chimw.RealIP)                      // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))       // request-scoped logger
	s.r.Use(requestIDField)                    // tag it with the request ID
	s.r.Use(hlog.AccessHandler(accessLog))     // one line per request
	s.r.Use(chimw.Recoverer)                   // recover from panics
	s.r.Use(chimw.Timeout(cfg.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                   // default JSON responses
	s.r.Use(cors(cfg.ClientOrigin))            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"mines-go","endpoints":["/health","/mines/schema","POST /mines/jsonnew","POST /mines/json"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountMines(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]string{"error": "not_found", "path": r.URL.Path})
		http.Error(w, string(body), http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestIDField adds chi's request ID to the request logger.
func requestIDField(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}
