package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"testing"
	"testing/fstest"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_AppliesPendingOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{
		"migrations/001_a.sql": {Data: []byte("CREATE TABLE a (id TEXT)")},
		"migrations/002_b.sql": {Data: []byte("CREATE TABLE b (id TEXT)")},
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS _migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM _migrations").WithArgs("001_a.sql").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM _migrations").WithArgs("002_b.sql").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE b").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO _migrations").WithArgs("002_b.sql").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, migrate(context.Background(), db, fsys))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{"migrations/001_a.sql": {Data: []byte("CREATE TABLE a (id TEXT)")}}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS _migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM _migrations").WillReturnError(sql.ErrNoRows)
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE a").WillReturnError(fmt.Errorf("syntax error"))
	mock.ExpectRollback()

	err = migrate(context.Background(), db, fsys)
	assert.ErrorContains(t, err, "apply 001_a.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	names, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(names), 2)
}

func TestRoundRepo_Insert(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		rec       RoundRecord
		args      []driver.Value
		affected  int64
		wantSaved bool
	}{
		{
			name: "guest round",
			rec: RoundRecord{
				ID: "r1", SessionID: "s1", Secret: "crane", Status: "won",
				TriesUsed: 3, MaxTries: 5, HardMode: true, Accuracy: 0.5,
				StartedAt: start, FinishedAt: start.Add(time.Minute),
			},
			args: []driver.Value{"r1", "s1", nil, "crane", "won", 3, 5, true, 0.5, nil,
				"2025-06-01T10:00:00Z", "2025-06-01T10:01:00Z"},
			affected:  1,
			wantSaved: true,
		},
		{
			name: "repeat daily is ignored",
			rec: RoundRecord{
				ID: "r2", SessionID: "s2", UserID: "u1", Secret: "slate", Status: "won",
				TriesUsed: 1, MaxTries: 5, Accuracy: 1, DailyDate: "2025-06-01",
				StartedAt: start, FinishedAt: start,
			},
			args: []driver.Value{"r2", "s2", "u1", "slate", "won", 1, 5, false, 1.0, "2025-06-01",
				"2025-06-01T10:00:00Z", "2025-06-01T10:00:00Z"},
			affected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec("INSERT OR IGNORE INTO rounds").
				WithArgs(tt.args...).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			saved, err := NewRoundRepo(db).Insert(context.Background(), tt.rec)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSaved, saved)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRoundRepo_ListByPlayer(t *testing.T) {
	tests := []struct {
		name          string
		rows          *sqlmock.Rows
		queryErr      error
		expectedLen   int
		expectedError bool
	}{
		{
			name: "two rounds",
			rows: sqlmock.NewRows([]string{"id", "session_id", "secret", "status", "tries_used", "max_tries",
				"hard_mode", "accuracy", "daily_date", "started_at", "finished_at"}).
				AddRow("r2", "s1", "slate", "lost", 5, 5, false, 0.2, "", "2025-06-02T10:00:00Z", "2025-06-02T10:05:00Z").
				AddRow("r1", "s1", "crane", "won", 2, 5, true, 0.8, "2025-06-01", "2025-06-01T10:00:00Z", "2025-06-01T10:01:00Z"),
			expectedLen: 2,
		},
		{
			name:          "query error",
			queryErr:      fmt.Errorf("db down"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			q := mock.ExpectQuery("SELECT id, session_id").WithArgs("u1", 50)
			if tt.queryErr != nil {
				q.WillReturnError(tt.queryErr)
			} else {
				q.WillReturnRows(tt.rows)
			}

			out, err := NewRoundRepo(db).ListByPlayer(context.Background(), "u1", 0)
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, out, tt.expectedLen)
			assert.Equal(t, "u1", out[0].UserID)
			assert.Equal(t, "2025-06-01", out[1].DailyDate)
			assert.True(t, out[1].HardMode)
			assert.Equal(t, time.Date(2025, 6, 2, 10, 5, 0, 0, time.UTC), out[0].FinishedAt.UTC())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRoundRepo_DailyPlayed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").WithArgs("u1", "2025-06-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT COUNT").WithArgs("u2", "2025-06-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	repo := NewRoundRepo(db)
	played, err := repo.DailyPlayed(context.Background(), "u1", "2025-06-01")
	require.NoError(t, err)
	assert.True(t, played)
	played, err = repo.DailyPlayed(context.Background(), "u2", "2025-06-01")
	require.NoError(t, err)
	assert.False(t, played)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoundRepo_DailyLeaderboard(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT r.user_id, u.username").WithArgs("2025-06-01", 20).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "tries_used", "finished_at"}).
			AddRow("u1", "ada", 2, "2025-06-01T08:00:00Z").
			AddRow("u2", "bob", 4, "2025-06-01T07:00:00Z"))

	rows, err := NewRoundRepo(db).DailyLeaderboard(context.Background(), "2025-06-01", -1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ada", rows[0].Username)
	assert.Equal(t, 4, rows[1].TriesUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create(t *testing.T) {
	tests := []struct {
		name     string
		execErr  error
		expected error
	}{
		{name: "created"},
		{name: "duplicate username", execErr: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, expected: ErrUsernameTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			e := mock.ExpectExec("INSERT INTO users").
				WithArgs("u1", "ada", "hash", "2025-06-01T00:00:00Z")
			if tt.execErr != nil {
				e.WillReturnError(tt.execErr)
			} else {
				e.WillReturnResult(sqlmock.NewResult(1, 1))
			}

			u := &User{ID: "u1", Username: "ada", PasswordHash: "hash", CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
			err = NewUserRepo(db).Create(context.Background(), u)
			if tt.expected != nil {
				assert.ErrorIs(t, err, tt.expected)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{"id", "username", "password_hash", "created_at", "games_played", "wins", "streak", "max_streak"}
	mock.ExpectQuery("SELECT id, username").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "ada", "hash", "2025-06-01T00:00:00Z", 4, 3, 2, 3))
	mock.ExpectQuery("SELECT id, username").WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(cols))

	repo := NewUserRepo(db)
	u, err := repo.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Username)
	assert.Equal(t, 3, u.Wins)
	assert.Equal(t, 3, u.MaxStreak)

	_, err = repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_FindByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{"id", "username", "password_hash", "created_at", "games_played", "wins", "streak", "max_streak"}
	mock.ExpectQuery("COLLATE NOCASE").WithArgs("ADA").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "ada", "hash", "2025-06-01T00:00:00Z", 0, 0, 0, 0))

	u, err := NewUserRepo(db).FindByUsername(context.Background(), "ADA")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), u.CreatedAt.UTC())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_RecordResult(t *testing.T) {
	tests := []struct {
		name      string
		won       bool
		current   []int // games_played, wins, streak, max_streak
		wantAfter []driver.Value
	}{
		{name: "win extends streak and max", won: true, current: []int{4, 3, 3, 3}, wantAfter: []driver.Value{5, 4, 4, 4}},
		{name: "win below max", won: true, current: []int{9, 6, 1, 5}, wantAfter: []driver.Value{10, 7, 2, 5}},
		{name: "loss resets streak", won: false, current: []int{4, 3, 3, 3}, wantAfter: []driver.Value{5, 3, 0, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectQuery("SELECT games_played, wins, streak, max_streak").WithArgs("u1").
				WillReturnRows(sqlmock.NewRows([]string{"games_played", "wins", "streak", "max_streak"}).
					AddRow(tt.current[0], tt.current[1], tt.current[2], tt.current[3]))
			mock.ExpectExec("UPDATE users SET").
				WithArgs(append(tt.wantAfter, "u1")...).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			require.NoError(t, NewUserRepo(db).RecordResult(context.Background(), "u1", tt.won))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_RecordResultUnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT games_played").WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err = NewUserRepo(db).RecordResult(context.Background(), "ghost", true)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
