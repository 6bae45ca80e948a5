// internal/game/engine.go
//
// Session: the state machine wrapped around the scorer.
// Responsibilities:
//   - Start rounds from a fixed or dictionary-picked secret.
//   - Validate guesses (length, dictionary, tries guard, hard-mode legality).
//   - Score accepted guesses and track history and the try counter.
//   - Report continue / won / lost; reset on demand.
//
// Lifecycle:
//   Idle → Active (StartRound) → Won | Lost → Idle (Reset) or Active (StartRound).
//
// Notes:
//   - A win clears round-scoped state at once; the Outcome carries everything
//     needed for display.
//   - A loss leaves the secret and history in place until Reset or StartRound,
//     so callers can still inspect them. Further guesses fail with
//     *TriesExhaustedError.
//   - A Session has a single owner and is not safe for concurrent use.
package game

import (
	"github.com/robalobadob/wordle/apps/rusdle-server/internal/words"
)

const (
	DefaultMaxTries = 5
)

// Dictionary is the read-only word source a Session consults.
type Dictionary interface {
	Contains(word string) bool
	Random() (string, error)
}

// Config is the round-independent session configuration.
type Config struct {
	HardMode bool
	MaxTries int
}

// Session holds one player's rounds.
type Session struct {
	dict     Dictionary
	hard     bool
	maxTries int

	// round-scoped
	state   State
	secret  []rune
	pool    LetterPool
	history []GuessResult
	tries   int
}

// NewSession returns an idle session. A MaxTries below 1 falls back to DefaultMaxTries.
func NewSession(dict Dictionary, cfg Config) *Session {
	if cfg.MaxTries < 1 {
		cfg.MaxTries = DefaultMaxTries
	}
	return &Session{dict: dict, hard: cfg.HardMode, maxTries: cfg.MaxTries}
}

// StartRound begins a round with a fixed secret, discarding any previous round.
func (s *Session) StartRound(secret string) error {
	secret = words.Normalize(secret)
	if secret == "" {
		return ErrEmptySecret
	}
	s.clearRound()
	s.state = StateActive
	s.secret = []rune(secret)
	s.pool = NewLetterPool(secret)
	s.tries = 1
	return nil
}

// StartRandomRound picks the secret from the dictionary and starts a round.
func (s *Session) StartRandomRound() (string, error) {
	secret, err := s.dict.Random()
	if err != nil {
		return "", err
	}
	if err := s.StartRound(secret); err != nil {
		return "", err
	}
	return string(s.secret), nil
}

// Submit validates and scores a guess.
//
// Validation order: round present, length, dictionary, tries guard, hard mode.
// A failed validation returns an error and leaves the session untouched.
func (s *Session) Submit(guess string) (Outcome, error) {
	if s.state != StateActive && s.state != StateLost {
		return Outcome{}, ErrNoActiveRound
	}
	g := []rune(words.Normalize(guess))
	if len(g) != len(s.secret) {
		return Outcome{}, ErrLengthMismatch
	}
	if !s.dict.Contains(string(g)) {
		return Outcome{}, ErrUnknownWord
	}
	if s.tries > s.maxTries {
		return Outcome{}, &TriesExhaustedError{Secret: string(s.secret), History: s.History()}
	}
	if s.hard && len(s.history) > 0 {
		if err := checkHardMode(s.history[len(s.history)-1], g); err != nil {
			return Outcome{}, err
		}
	}

	res := score(s.secret, g, s.pool.clone())
	s.history = append(s.history, res)
	s.tries++

	switch {
	case res.Solved():
		out := Outcome{
			Status:    StatusWon,
			Result:    res,
			TriesUsed: len(s.history),
			MaxTries:  s.maxTries,
			Secret:    string(s.secret),
			History:   s.history,
		}
		s.clearRound()
		s.state = StateWon
		return out, nil
	case s.tries > s.maxTries:
		s.state = StateLost
		return Outcome{
			Status:    StatusLost,
			Result:    res,
			TriesUsed: len(s.history),
			MaxTries:  s.maxTries,
			Secret:    string(s.secret),
			History:   s.History(),
		}, nil
	default:
		return Outcome{Status: StatusContinue, Result: res, MaxTries: s.maxTries}, nil
	}
}

// checkHardMode enforces the constraints revealed by the previous guess:
// Correct letters stay in place, Misplaced letters appear somewhere.
func checkHardMode(last GuessResult, guess []rune) error {
	for i, lv := range last {
		if lv.Verdict != VerdictCorrect {
			continue
		}
		if i >= len(guess) || guess[i] != lv.Letter {
			return &HardModeError{Position: i, Letter: lv.Letter}
		}
	}
	for _, lv := range last {
		if lv.Verdict == VerdictMisplaced && !containsRune(guess, lv.Letter) {
			return &HardModeError{Position: -1, Letter: lv.Letter}
		}
	}
	return nil
}

func containsRune(rs []rune, r rune) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

// Reset returns the session to Idle. Configuration is kept.
func (s *Session) Reset() {
	s.clearRound()
	s.state = StateIdle
}

func (s *Session) clearRound() {
	s.secret = nil
	s.pool = nil
	s.history = nil
	s.tries = 0
}

// SetHardMode toggles hard mode. It applies to the next guess.
func (s *Session) SetHardMode(on bool) { s.hard = on }

// SetMaxTries changes the try limit.
func (s *Session) SetMaxTries(n int) error {
	if n < 1 {
		return ErrInvalidMaxTries
	}
	s.maxTries = n
	return nil
}

func (s *Session) State() State   { return s.state }
func (s *Session) Tries() int     { return s.tries }
func (s *Session) MaxTries() int  { return s.maxTries }
func (s *Session) HardMode() bool { return s.hard }

// WordLength is the letter count of the current secret (0 when no round).
func (s *Session) WordLength() int { return len(s.secret) }

// Secret returns the current secret, or "" when no round is held.
func (s *Session) Secret() string { return string(s.secret) }

// History returns a copy of the guesses scored this round.
func (s *Session) History() []GuessResult {
	if len(s.history) == 0 {
		return nil
	}
	return append([]GuessResult(nil), s.history...)
}
