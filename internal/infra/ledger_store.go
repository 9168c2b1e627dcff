package infra

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/eliteGoblin/frictiond/internal/domain"
)

const ledgerFileName = "ledger.json"

// FileLedgerStore implements domain.LedgerStore as a single JSON
// document, replaced atomically after every ledger mutation.
type FileLedgerStore struct {
	path   string
	logger *zap.Logger
}

// NewFileLedgerStore creates a ledger store under dataDir.
func NewFileLedgerStore(dataDir string, logger *zap.Logger) *FileLedgerStore {
	return &FileLedgerStore{
		path:   filepath.Join(dataDir, ledgerFileName),
		logger: logger,
	}
}

// Load returns the stored ledger. A missing document yields an empty
// ledger; an unreadable one also falls back to empty (the user must
// never be blocked by storage loss) with the failure reported.
func (s *FileLedgerStore) Load() (*domain.FocusLedger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewFocusLedger(), nil
		}
		s.logger.Warn("ledger unreadable, starting empty",
			zap.String("path", s.path),
			zap.Error(err))
		return domain.NewFocusLedger(), &domain.PersistenceError{Op: "load", Key: "ledger", Err: err}
	}

	var ledger domain.FocusLedger
	if err := json.Unmarshal(data, &ledger); err != nil {
		s.logger.Warn("ledger corrupt, starting empty",
			zap.String("path", s.path),
			zap.Error(err))
		return domain.NewFocusLedger(), &domain.PersistenceError{Op: "load", Key: "ledger", Err: err}
	}

	if ledger.Days == nil {
		ledger.Days = make(map[domain.DateKey]*domain.DailyAggregate)
	}

	return &ledger, nil
}

// Save replaces the ledger document atomically.
func (s *FileLedgerStore) Save(ledger *domain.FocusLedger) error {
	if err := atomicWriteJSON(s.path, ledger); err != nil {
		return &domain.PersistenceError{Op: "save", Key: "ledger", Err: err}
	}
	return nil
}

// Path returns the backing file path (for tests and status output).
func (s *FileLedgerStore) Path() string {
	return s.path
}

// Ensure FileLedgerStore implements domain.LedgerStore.
var _ domain.LedgerStore = (*FileLedgerStore)(nil)
