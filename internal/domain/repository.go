package domain

import "time"

// Clock abstracts wall-clock access so machines and the ledger can be
// driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

// SettingsStore persists the single settings document under a fixed key.
type SettingsStore interface {
	// Load returns the stored settings, or defaults when nothing is
	// stored or the document is unreadable.
	Load() (Settings, error)

	// Save replaces the settings document atomically.
	Save(Settings) error
}

// LedgerStore persists the whole focus ledger under a fixed key.
// Writes are atomic whole-document replaces: a reader after a write
// sees either the fully-prior or fully-new ledger, never a mix.
type LedgerStore interface {
	// Load returns the stored ledger, or an empty ledger when nothing
	// is stored or the document is unreadable.
	Load() (*FocusLedger, error)

	// Save replaces the ledger document atomically.
	Save(*FocusLedger) error
}

// CardSource provides access to the user's flashcard pool.
type CardSource interface {
	// QuizEligibleCards returns all cards flagged for the delay quiz.
	QuizEligibleCards() ([]Card, error)
}

// AppGateProvider is the opaque authorization + app-token contract
// exposed by the host platform. Tokens are uninterpretable identifiers.
type AppGateProvider interface {
	// IsAuthorized reports whether app monitoring is permitted.
	IsAuthorized() bool

	// RequestAuthorization asks the host for monitoring permission.
	RequestAuthorization() (bool, error)

	// SelectedAppTokens returns the tokens of the flagged apps.
	SelectedAppTokens() ([]AppToken, error)

	// DetectLaunches returns tokens of flagged apps that have been
	// opened since the previous call.
	DetectLaunches() ([]AppToken, error)
}

// KeyProvider abstracts the source of the card store encryption key.
type KeyProvider interface {
	// GetKey returns the encryption key bytes.
	GetKey() ([]byte, error)

	// StoreKey persists a new encryption key.
	StoreKey(key []byte) error

	// KeyExists checks if a key has been generated.
	KeyExists() bool
}
