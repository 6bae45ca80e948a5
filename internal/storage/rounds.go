package storage

import (
	"context"
	"database/sql"
	"time"
)

// RoundRecord is one finished round.
type RoundRecord struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	UserID     string    `json:"-"` // empty for guests
	Secret     string    `json:"secret"`
	Status     string    `json:"status"` // "won" | "lost"
	TriesUsed  int       `json:"triesUsed"`
	MaxTries   int       `json:"maxTries"`
	HardMode   bool      `json:"hardMode"`
	Accuracy   float64   `json:"accuracy"`
	DailyDate  string    `json:"dailyDate,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// LeaderboardRow is one entry of a daily leaderboard.
type LeaderboardRow struct {
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	TriesUsed  int       `json:"triesUsed"`
	FinishedAt time.Time `json:"finishedAt"`
}

// RoundRepo persists finished rounds.
type RoundRepo struct {
	db *sql.DB
}

func NewRoundRepo(db *sql.DB) *RoundRepo { return &RoundRepo{db: db} }

// Insert stores rec and reports whether a row was written.
// A second daily result for the same player is ignored and reported as false.
func (r *RoundRepo) Insert(ctx context.Context, rec RoundRecord) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO rounds
            (id, session_id, user_id, secret, status, tries_used, max_tries,
             hard_mode, accuracy, daily_date, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, nullString(rec.UserID), rec.Secret, rec.Status,
		rec.TriesUsed, rec.MaxTries, rec.HardMode, rec.Accuracy, nullString(rec.DailyDate),
		rec.StartedAt.UTC().Format(time.RFC3339), rec.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByPlayer returns a player's most recent rounds, newest first.
// A limit <= 0 means 50.
func (r *RoundRepo) ListByPlayer(ctx context.Context, userID string, limit int) ([]RoundRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, session_id, secret, status, tries_used, max_tries, hard_mode,
               accuracy, COALESCE(daily_date, ''), started_at, finished_at
        FROM rounds
        WHERE user_id = ?
        ORDER BY finished_at DESC
        LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RoundRecord, 0, limit)
	for rows.Next() {
		var rec RoundRecord
		var started, finished string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Secret, &rec.Status, &rec.TriesUsed,
			&rec.MaxTries, &rec.HardMode, &rec.Accuracy, &rec.DailyDate, &started, &finished); err != nil {
			return nil, err
		}
		rec.UserID = userID
		rec.StartedAt = parseTime(started)
		rec.FinishedAt = parseTime(finished)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DailyPlayed reports whether the player already finished the daily round for date.
func (r *RoundRepo) DailyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM rounds WHERE user_id = ? AND daily_date = ?`,
		userID, date,
	).Scan(&cnt); err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// DailyLeaderboard lists the winners of date's daily round: fewest tries
// first, then earliest finish. A limit <= 0 means 20.
func (r *RoundRepo) DailyLeaderboard(ctx context.Context, date string, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT r.user_id, u.username, r.tries_used, r.finished_at
        FROM rounds r
        JOIN users u ON u.id = r.user_id
        WHERE r.daily_date = ? AND r.status = 'won'
        ORDER BY r.tries_used ASC, r.finished_at ASC
        LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LeaderboardRow, 0, limit)
	for rows.Next() {
		var row LeaderboardRow
		var finished string
		if err := rows.Scan(&row.UserID, &row.Username, &row.TriesUsed, &finished); err != nil {
			return nil, err
		}
		row.FinishedAt = parseTime(finished)
		out = append(out, row)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// parseTime parses RFC3339 timestamps; on error returns zero time.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
