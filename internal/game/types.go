// internal/game/types.go
//
// Core type definitions for the word-guessing engine.
// Defines:
//   - Verdict / LetterVerdict: per-letter result of a guess.
//   - GuessResult: one scored guess.
//   - State / Status / Outcome: round lifecycle and the result of a submission.

package game

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Verdict represents the evaluation result for a single letter in a guess.
//   - "correct":   letter is in the secret at this position.
//   - "misplaced": letter is in the secret, at another position.
//   - "absent":    letter is not in the secret (or all its copies are already credited).
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictMisplaced Verdict = "misplaced"
	VerdictAbsent    Verdict = "absent"
)

// LetterVerdict pairs a guessed letter with its verdict.
type LetterVerdict struct {
	Letter  rune
	Verdict Verdict
}

// MarshalJSON writes the letter as a one-character string.
func (lv LetterVerdict) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Letter  string  `json:"letter"`
		Verdict Verdict `json:"verdict"`
	}{string(lv.Letter), lv.Verdict})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (lv *LetterVerdict) UnmarshalJSON(b []byte) error {
	var raw struct {
		Letter  string  `json:"letter"`
		Verdict Verdict `json:"verdict"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	lv.Letter, _ = utf8.DecodeRuneInString(raw.Letter)
	lv.Verdict = raw.Verdict
	return nil
}

// GuessResult is the ordered verdict sequence for one guess.
type GuessResult []LetterVerdict

// Solved reports whether every letter is Correct.
func (g GuessResult) Solved() bool {
	if len(g) == 0 {
		return false
	}
	for _, lv := range g {
		if lv.Verdict != VerdictCorrect {
			return false
		}
	}
	return true
}

// Word reassembles the guessed word.
func (g GuessResult) Word() string {
	rs := make([]rune, len(g))
	for i, lv := range g {
		rs[i] = lv.Letter
	}
	return string(rs)
}

// Count returns how many letters carry verdict v.
func (g GuessResult) Count(v Verdict) int {
	n := 0
	for _, lv := range g {
		if lv.Verdict == v {
			n++
		}
	}
	return n
}

// State is the lifecycle position of a Session.
type State int

const (
	StateIdle State = iota
	StateActive
	StateWon
	StateLost
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateWon:
		return "won"
	case StateLost:
		return "lost"
	default:
		return "idle"
	}
}

// MarshalText lets State appear as its name in JSON.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	for _, v := range []State{StateIdle, StateActive, StateWon, StateLost} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("game: unknown state %q", b)
}

// Status says whether an accepted guess ended the round.
type Status int

const (
	StatusContinue Status = iota
	StatusWon
	StatusLost
)

func (s Status) String() string {
	switch s {
	case StatusWon:
		return "won"
	case StatusLost:
		return "lost"
	default:
		return "continue"
	}
}

// MarshalText lets Status appear as its name in JSON.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	for _, v := range []Status{StatusContinue, StatusWon, StatusLost} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("game: unknown status %q", b)
}

// Outcome is the result of an accepted guess.
// TriesUsed, Secret and History are populated only when Status is Won or Lost.
type Outcome struct {
	Status    Status
	Result    GuessResult
	TriesUsed int
	MaxTries  int
	Secret    string
	History   []GuessResult
}

// Finished reports whether the round ended with this guess.
func (o Outcome) Finished() bool { return o.Status != StatusContinue }
