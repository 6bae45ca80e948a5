// internal/httpserver/routes_rounds.go
//
// Round endpoints:
//   - POST   /rounds                → new session with a started round
//   - GET    /rounds/{id}           → snapshot
//   - POST   /rounds/{id}/guesses   → submit a guess
//   - POST   /rounds/{id}/restart   → new secret, same session config
//   - POST   /rounds/{id}/reset     → back to idle
//   - PATCH  /rounds/{id}/options   → hard mode / max tries
//   - DELETE /rounds/{id}           → forget the session
//   - GET    /rounds/mine           → signed-in player's finished rounds

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/rusdle-server/internal/auth"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/daily"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/game"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/storage"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/store"
)

func (s *Server) mountRounds() {
	s.r.Route("/rounds", func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Post("/", s.handleNewRound)
		r.With(s.requireAuth()).Get("/mine", s.handleMyRounds)
		r.Get("/{id}", s.handleGetRound)
		r.Delete("/{id}", s.handleDeleteRound)
		r.Post("/{id}/guesses", s.handleGuess)
		r.Post("/{id}/restart", s.handleRestart)
		r.Post("/{id}/reset", s.handleReset)
		r.Patch("/{id}/options", s.handleOptions)
	})
}

// roundView is the public snapshot of a session.
type roundView struct {
	RoundID    string             `json:"roundId"`
	State      game.State         `json:"state"`
	Tries      int                `json:"tries"`
	MaxTries   int                `json:"maxTries"`
	HardMode   bool               `json:"hardMode"`
	WordLength int                `json:"wordLength"`
	Daily      string             `json:"daily,omitempty"`
	History    []game.GuessResult `json:"history"`
	Secret     string             `json:"secret,omitempty"` // only once lost
}

func viewOf(e *store.Entry) roundView {
	sess := e.Session
	v := roundView{
		RoundID:    e.ID,
		State:      sess.State(),
		Tries:      sess.Tries(),
		MaxTries:   sess.MaxTries(),
		HardMode:   sess.HardMode(),
		WordLength: sess.WordLength(),
		Daily:      e.Daily,
		History:    sess.History(),
	}
	if v.History == nil {
		v.History = []game.GuessResult{}
	}
	if sess.State() == game.StateLost {
		v.Secret = sess.Secret()
	}
	return v
}

// ------------------------------ new round ----------------------------------

type newRoundReq struct {
	HardMode *bool `json:"hardMode"`
	MaxTries *int  `json:"maxTries" validate:"omitempty,min=1,max=20"`
	Daily    bool  `json:"daily"`
}

func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	var req newRoundReq
	if err := s.decode(r, &req, true); err != nil {
		s.badRequest(w, err)
		return
	}

	cfg := s.opts.Defaults
	if req.HardMode != nil {
		cfg.HardMode = *req.HardMode
	}
	if req.MaxTries != nil {
		if *req.MaxTries < 1 {
			writeError(w, http.StatusBadRequest, "invalid_request", game.ErrInvalidMaxTries.Error())
			return
		}
		cfg.MaxTries = *req.MaxTries
	}

	now := s.opts.Now()
	e := &store.Entry{
		ID:        uuid.NewString(),
		StartedAt: now,
		Session:   game.NewSession(s.opts.Dict, cfg),
	}
	if p, ok := auth.PlayerFrom(r.Context()); ok {
		e.PlayerID = p.ID
	}

	if req.Daily {
		date := daily.DateKey(now)
		if e.PlayerID != "" {
			played, err := s.opts.Rounds.DailyPlayed(r.Context(), e.PlayerID, date)
			if err != nil {
				log.Error().Err(err).Str("player", e.PlayerID).Msg("check daily")
				writeError(w, http.StatusInternalServerError, "db_error", "")
				return
			}
			if played {
				writeError(w, http.StatusConflict, "already_played", date)
				return
			}
			if live, ok := s.claimDaily(r.Context(), e.PlayerID, date, e.ID); !ok {
				writeJSON(w, http.StatusConflict, map[string]string{
					"error":   "daily_in_progress",
					"message": date,
					"roundId": live,
				})
				return
			}
		}
		secret, err := s.daily.Word(s.opts.Dict.Words(), now)
		if err == nil {
			err = e.Session.StartRound(secret)
		}
		if err != nil {
			s.releaseDaily(e.PlayerID, date, e.ID)
			log.Error().Err(err).Msg("start daily round")
			writeError(w, http.StatusInternalServerError, "no_words", err.Error())
			return
		}
		e.Daily = date
	} else if _, err := e.Session.StartRandomRound(); err != nil {
		log.Error().Err(err).Msg("start round")
		writeError(w, http.StatusInternalServerError, "no_words", err.Error())
		return
	}

	if err := s.opts.Store.Create(r.Context(), e); err != nil {
		s.releaseDaily(e.PlayerID, e.Daily, e.ID)
		log.Error().Err(err).Msg("save round")
		writeError(w, http.StatusInternalServerError, "save_failed", "")
		return
	}
	log.Debug().Str("roundId", e.ID).Bool("daily", req.Daily).Bool("hard", cfg.HardMode).Msg("round started")
	writeJSON(w, http.StatusCreated, viewOf(e))
}

// claimDaily records roundID as the player's daily round for date. It fails,
// returning the holder's id, while another round still carries that daily word.
func (s *Server) claimDaily(ctx context.Context, playerID, date, roundID string) (string, bool) {
	key := playerID + "|" + date
	s.dailyMu.Lock()
	defer s.dailyMu.Unlock()
	if id, ok := s.dailyLive[key]; ok {
		live := false
		_ = s.opts.Store.Update(ctx, id, func(e *store.Entry) error {
			live = e.Daily == date
			return nil
		})
		if live {
			return id, false
		}
	}
	s.dailyLive[key] = roundID
	return "", true
}

// releaseDaily drops a claim made for a round that was never registered.
func (s *Server) releaseDaily(playerID, date, roundID string) {
	if playerID == "" || date == "" {
		return
	}
	key := playerID + "|" + date
	s.dailyMu.Lock()
	defer s.dailyMu.Unlock()
	if s.dailyLive[key] == roundID {
		delete(s.dailyLive, key)
	}
}

// ------------------------------- guesses -----------------------------------

type guessReq struct {
	Guess string `json:"guess" validate:"required,max=64"`
}

type guessRes struct {
	Status    game.Status        `json:"status"`
	Result    game.GuessResult   `json:"result"`
	Tries     int                `json:"tries"`
	MaxTries  int                `json:"maxTries"`
	TriesUsed int                `json:"triesUsed,omitempty"`
	Secret    string             `json:"secret,omitempty"`
	History   []game.GuessResult `json:"history,omitempty"`
	Accuracy  *float64           `json:"accuracy,omitempty"`
}

// finishedRound is what a terminal outcome needs to be persisted,
// captured while the entry lock is held.
type finishedRound struct {
	sessionID string
	playerID  string
	daily     string
	hard      bool
	startedAt time.Time
	outcome   game.Outcome
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := s.decode(r, &req, false); err != nil {
		s.badRequest(w, err)
		return
	}

	var res guessRes
	var done *finishedRound
	err := s.opts.Store.Update(r.Context(), chi.URLParam(r, "id"), func(e *store.Entry) error {
		out, err := e.Session.Submit(req.Guess)
		if err != nil {
			return err
		}
		res = guessRes{
			Status:   out.Status,
			Result:   out.Result,
			Tries:    e.Session.Tries(),
			MaxTries: out.MaxTries,
		}
		if out.Finished() {
			acc := game.Accuracy(out.History)
			res.Tries = out.TriesUsed
			res.TriesUsed = out.TriesUsed
			res.Secret = out.Secret
			res.History = out.History
			res.Accuracy = &acc
			done = &finishedRound{
				sessionID: e.ID,
				playerID:  e.PlayerID,
				daily:     e.Daily,
				hard:      e.Session.HardMode(),
				startedAt: e.StartedAt,
				outcome:   out,
			}
		}
		return nil
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}

	if done != nil {
		s.recordRound(context.WithoutCancel(r.Context()), *done)
	}
	writeJSON(w, http.StatusOK, res)
}

// recordRound persists a finished round and bumps player stats (best effort).
func (s *Server) recordRound(ctx context.Context, f finishedRound) {
	status := "lost"
	if f.outcome.Status == game.StatusWon {
		status = "won"
	}
	rec := storage.RoundRecord{
		ID:         uuid.NewString(),
		SessionID:  f.sessionID,
		UserID:     f.playerID,
		Secret:     f.outcome.Secret,
		Status:     status,
		TriesUsed:  f.outcome.TriesUsed,
		MaxTries:   f.outcome.MaxTries,
		HardMode:   f.hard,
		Accuracy:   game.Accuracy(f.outcome.History),
		DailyDate:  f.daily,
		StartedAt:  f.startedAt,
		FinishedAt: s.opts.Now(),
	}
	saved, err := s.opts.Rounds.Insert(ctx, rec)
	if err != nil {
		log.Warn().Err(err).Str("roundId", f.sessionID).Msg("insert round")
		return
	}
	if !saved {
		// a daily result for this player and date already exists
		log.Warn().Str("roundId", f.sessionID).Str("player", f.playerID).Str("daily", f.daily).Msg("duplicate daily result ignored")
		return
	}
	if f.playerID != "" {
		if err := s.opts.Users.RecordResult(ctx, f.playerID, status == "won"); err != nil {
			log.Warn().Err(err).Str("player", f.playerID).Msg("record result")
		}
	}
}

// writeGameError maps session and store errors to HTTP responses.
func (s *Server) writeGameError(w http.ResponseWriter, err error) {
	var te *game.TriesExhaustedError
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "round not found or expired")
	case errors.As(err, &te):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":   "tries_exhausted",
			"message": te.Error(),
			"secret":  te.Secret,
			"history": te.History,
		})
	case errors.Is(err, game.ErrLengthMismatch):
		writeError(w, http.StatusBadRequest, "length_mismatch", err.Error())
	case errors.Is(err, game.ErrUnknownWord):
		writeError(w, http.StatusUnprocessableEntity, "unknown_word", err.Error())
	case errors.Is(err, game.ErrHardModeViolation):
		writeError(w, http.StatusConflict, "hard_mode_violation", err.Error())
	case errors.Is(err, game.ErrNoActiveRound):
		writeError(w, http.StatusConflict, "no_active_round", err.Error())
	case errors.Is(err, game.ErrInvalidMaxTries):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "timeout", "")
	default:
		log.Error().Err(err).Msg("round operation")
		writeError(w, http.StatusInternalServerError, "internal", "")
	}
}

// ------------------------------- lifecycle ---------------------------------

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	var v roundView
	err := s.opts.Store.Update(r.Context(), chi.URLParam(r, "id"), func(e *store.Entry) error {
		v = viewOf(e)
		return nil
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	var v roundView
	err := s.opts.Store.Update(r.Context(), chi.URLParam(r, "id"), func(e *store.Entry) error {
		if _, err := e.Session.StartRandomRound(); err != nil {
			return err
		}
		e.Daily = ""
		e.StartedAt = s.opts.Now()
		v = viewOf(e)
		return nil
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var v roundView
	err := s.opts.Store.Update(r.Context(), chi.URLParam(r, "id"), func(e *store.Entry) error {
		e.Session.Reset()
		e.Daily = ""
		v = viewOf(e)
		return nil
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type optionsReq struct {
	HardMode *bool `json:"hardMode"`
	MaxTries *int  `json:"maxTries" validate:"omitempty,min=1,max=20"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	var req optionsReq
	if err := s.decode(r, &req, false); err != nil {
		s.badRequest(w, err)
		return
	}
	var v roundView
	err := s.opts.Store.Update(r.Context(), chi.URLParam(r, "id"), func(e *store.Entry) error {
		if req.MaxTries != nil {
			if err := e.Session.SetMaxTries(*req.MaxTries); err != nil {
				return err
			}
		}
		if req.HardMode != nil {
			e.Session.SetHardMode(*req.HardMode)
		}
		v = viewOf(e)
		return nil
	})
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteRound(w http.ResponseWriter, r *http.Request) {
	_ = s.opts.Store.Delete(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// handleMyRounds lists the signed-in player's finished rounds.
func (s *Server) handleMyRounds(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PlayerFrom(r.Context())
	recs, err := s.opts.Rounds.ListByPlayer(r.Context(), p.ID, 50)
	if err != nil {
		log.Error().Err(err).Str("player", p.ID).Msg("list rounds")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
