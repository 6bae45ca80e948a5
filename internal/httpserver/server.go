// internal/httpserver/server.go
//
// HTTP server wiring for the rounds service.
// Responsibilities:
//   - Router + middleware (request IDs, panic recovery, timeouts, access log, JSON, CORS).
//   - Public endpoints: "/", "/health", "/dictionary".
//   - Round endpoints (optional auth): mounted under /rounds.
//   - Daily leaderboard: /daily/leaderboard.
//   - Account endpoints: /auth/*, /stats/me, /rounds/mine.
//
// Notes:
//   - Every access to a game.Session goes through store.Update, which holds the
//     entry lock; sessions are never shared between requests otherwise.
//   - Persisting finished rounds is best effort: failures are logged, never returned.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/rusdle-server/internal/auth"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/daily"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/game"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/storage"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/store"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/words"
)

// RoundRepository persists finished rounds.
type RoundRepository interface {
	Insert(ctx context.Context, rec storage.RoundRecord) (bool, error)
	ListByPlayer(ctx context.Context, userID string, limit int) ([]storage.RoundRecord, error)
	DailyPlayed(ctx context.Context, userID, date string) (bool, error)
	DailyLeaderboard(ctx context.Context, date string, limit int) ([]storage.LeaderboardRow, error)
}

// UserRepository persists player accounts.
type UserRepository interface {
	Create(ctx context.Context, u *storage.User) error
	FindByUsername(ctx context.Context, username string) (*storage.User, error)
	FindByID(ctx context.Context, id string) (*storage.User, error)
	RecordResult(ctx context.Context, id string, won bool) error
}

// Options carries the server's collaborators and settings.
type Options struct {
	Store  store.Store
	Dict   *words.Dictionary
	Rounds RoundRepository
	Users  UserRepository
	Issuer *auth.Issuer

	Defaults       game.Config // per-round defaults
	DailySalt      string
	CookieName     string
	ClientOrigin   string
	SecureCookies  bool
	RequestTimeout time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server bundles the router and its collaborators.
type Server struct {
	r        *chi.Mux
	opts     Options
	validate *validator.Validate
	daily    daily.Schedule

	dailyMu   sync.Mutex
	dailyLive map[string]string // playerID|date → round id
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.CookieName == "" {
		opts.CookieName = "rusdle_token"
	}
	s := &Server{
		r:         chi.NewRouter(),
		opts:      opts,
		validate:  validator.New(),
		daily:     daily.NewSchedule(opts.DailySalt),
		dailyLive: make(map[string]string),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(accessLog)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(opts.RequestTimeout))
	s.r.Use(jsonContentType)
	s.r.Use(cors(opts.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "rusdle",
			"endpoints": []string{"/health", "POST /rounds", "POST /rounds/{id}/guesses", "/auth/*", "/daily/leaderboard"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/dictionary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{
			"words":      s.opts.Dict.Len(),
			"wordLength": s.opts.Dict.WordLength(),
		})
	})

	s.mountAuthRoutes()
	s.mountRounds()
	s.mountDaily()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})
	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("requestId", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------- helpers -----------------------------------

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

// decode reads a JSON body into v and validates it.
// An empty body is accepted when allowEmpty is set.
func (s *Server) decode(r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && allowEmpty {
		err = nil
	}
	if err != nil {
		return err
	}
	return s.validate.Struct(v)
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, "invalid_request", ve.Error())
		return
	}
	writeError(w, http.StatusBadRequest, "bad_json", err.Error())
}
