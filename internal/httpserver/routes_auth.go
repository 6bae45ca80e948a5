// internal/httpserver/routes_auth.go
//
// Account endpoints:
//   - POST /auth/signup → create account, set auth cookie
//   - POST /auth/login  → verify credentials, set auth cookie
//   - POST /auth/logout → clear auth cookie
//   - GET  /auth/me     → current player (401 when anonymous)
//   - GET  /stats/me    → running stats for the current player
//
// Tokens are accepted from the Authorization header or the auth cookie.

package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/rusdle-server/internal/auth"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/storage"
)

type credentialsReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authRes struct {
	Token  string      `json:"token"`
	Player auth.Player `json:"player"`
}

func (s *Server) mountAuthRoutes() {
	s.r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.With(s.withOptionalAuth(), s.requireAuth()).Get("/me", s.handleMe)
	})
	s.r.With(s.withOptionalAuth(), s.requireAuth()).Get("/stats/me", s.handleStats)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := s.decode(r, &req, false); err != nil {
		s.badRequest(w, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := auth.ValidateCredentials(req.Username, req.Password); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_credentials", err.Error())
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("hash password")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	u := &storage.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    s.opts.Now().UTC(),
	}
	if err := s.opts.Users.Create(r.Context(), u); err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			writeError(w, http.StatusConflict, "username_taken", "")
			return
		}
		log.Error().Err(err).Msg("create user")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	log.Info().Str("player", u.ID).Str("username", u.Username).Msg("signup")
	s.issue(w, http.StatusCreated, auth.Player{ID: u.ID, Username: u.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := s.decode(r, &req, false); err != nil {
		s.badRequest(w, err)
		return
	}
	u, err := s.opts.Users.FindByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		log.Error().Err(err).Msg("find user")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", auth.ErrInvalidCredentials.Error())
		return
	}
	s.issue(w, http.StatusOK, auth.Player{ID: u.ID, Username: u.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PlayerFrom(r.Context())
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PlayerFrom(r.Context())
	u, err := s.opts.Users.FindByID(r.Context(), p.ID)
	if errors.Is(err, storage.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "player not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("player", p.ID).Msg("stats")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// issue signs a token for p, sets the cookie, and writes the auth response.
func (s *Server) issue(w http.ResponseWriter, status int, p auth.Player) {
	tok, exp, err := s.opts.Issuer.Sign(p)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	s.setCookie(w, tok, exp)
	writeJSON(w, status, authRes{Token: tok, Player: p})
}

// ------------------------------ middleware ---------------------------------

// withOptionalAuth attaches the player to the context when a valid token is present.
// Invalid tokens are treated as anonymous.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := auth.TokenFromRequest(r, s.opts.CookieName); tok != "" && s.opts.Issuer != nil {
				if p, err := s.opts.Issuer.Parse(tok); err == nil {
					r = r.WithContext(auth.WithPlayer(r.Context(), p))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth rejects requests without a player in context, or whose
// account no longer exists.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PlayerFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "")
				return
			}
			if _, err := s.opts.Users.FindByID(r.Context(), p.ID); err != nil {
				if errors.Is(err, storage.ErrUserNotFound) {
					writeError(w, http.StatusUnauthorized, "unauthorized", "unknown player")
					return
				}
				log.Error().Err(err).Str("player", p.ID).Msg("load player")
				writeError(w, http.StatusInternalServerError, "db_error", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------- cookies -----------------------------------

func (s *Server) cookie(value string) *http.Cookie {
	c := &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if s.opts.SecureCookies {
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

func (s *Server) setCookie(w http.ResponseWriter, token string, exp time.Time) {
	c := s.cookie(token)
	c.Expires = exp
	http.SetCookie(w, c)
}

func (s *Server) clearCookie(w http.ResponseWriter) {
	c := s.cookie("")
	c.MaxAge = -1
	http.SetCookie(w, c)
}
