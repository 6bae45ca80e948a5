package game

import (
	"errors"
	"fmt"
)

// Validation failures. None of them change session state or consume a try.
var (
	ErrLengthMismatch    = errors.New("word length does not match secret length")
	ErrUnknownWord       = errors.New("word not in dictionary")
	ErrHardModeViolation = errors.New("guess ignores revealed letters (hard mode)")
	ErrTriesExhausted    = errors.New("maximum tries reached")
	ErrNoActiveRound     = errors.New("no active round")
	ErrEmptySecret       = errors.New("secret word is empty")
	ErrInvalidMaxTries   = errors.New("max tries must be at least 1")
)

// HardModeError describes which revealed letter a guess failed to reuse.
// Position is the locked index for a Correct letter, or -1 for a Misplaced
// letter that must appear anywhere.
type HardModeError struct {
	Position int
	Letter   rune
}

func (e *HardModeError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%v: letter %q must stay at position %d", ErrHardModeViolation, e.Letter, e.Position+1)
	}
	return fmt.Sprintf("%v: guess must contain %q", ErrHardModeViolation, e.Letter)
}

func (e *HardModeError) Is(target error) bool { return target == ErrHardModeViolation }

// TriesExhaustedError is returned for a submission after the round was lost.
// It carries the secret and the full history for display.
type TriesExhaustedError struct {
	Secret  string
	History []GuessResult
}

func (e *TriesExhaustedError) Error() string { return ErrTriesExhausted.Error() }

func (e *TriesExhaustedError) Is(target error) bool { return target == ErrTriesExhausted }
