package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for contract violations and data problems.
var (
	// ErrInvalidDuration reports a non-positive session duration.
	// This is a caller bug, not a recoverable user error; the ledger
	// rejects it before any state changes.
	ErrInvalidDuration = errors.New("session duration must be a positive number of seconds")

	// ErrInsufficientCards reports fewer than the required number of
	// quiz-eligible flashcards. User-visible: the presentation layer
	// must offer cancellation only.
	ErrInsufficientCards = errors.New("not enough quiz-eligible flashcards")

	// ErrInvalidSettings reports settings outside their allowed ranges.
	ErrInvalidSettings = errors.New("settings values out of range")
)

// PersistenceError wraps a storage read/write failure. Read failures
// are recovered locally (empty ledger / default settings); write
// failures are logged and surfaced non-fatally and never block the
// in-memory state machines.
type PersistenceError struct {
	Op  string // "load" or "save"
	Key string // the document key, e.g. "ledger"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s of %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
