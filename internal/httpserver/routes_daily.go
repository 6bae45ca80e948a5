// internal/httpserver/routes_daily.go
//
// Daily challenge read side:
//   - GET /daily            → today's date key and word length
//   - GET /daily/leaderboard → winners for a date (default today), fewest tries first
//
// Daily rounds themselves are started through POST /rounds with {"daily": true};
// a signed-in player gets one finished daily round per date (enforced by the DB).

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/rusdle-server/internal/daily"
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/storage"
)

func (s *Server) mountDaily() {
	s.r.Route("/daily", func(r chi.Router) {
		r.Get("/", s.handleDailyInfo)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

type dailyInfo struct {
	Date       string `json:"date"`
	WordLength int    `json:"wordLength"`
}

func (s *Server) handleDailyInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dailyInfo{
		Date:       daily.DateKey(s.opts.Now()),
		WordLength: s.opts.Dict.WordLength(),
	})
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string                   `json:"date"`
	Top  []storage.LeaderboardRow `json:"top"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.opts.Now())
	} else if _, err := daily.ParseDateKey(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return
	}
	rows, err := s.opts.Rounds.DailyLeaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	if rows == nil {
		rows = []storage.LeaderboardRow{}
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
