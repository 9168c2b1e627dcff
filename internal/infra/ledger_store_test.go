package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/frictiond/internal/domain"
)

func TestLedgerEmptyWhenMissing(t *testing.T) {
	store := NewFileLedgerStore(t.TempDir(), zap.NewNop())

	ledger, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, ledger)
	assert.Empty(t, ledger.Days)
	assert.Equal(t, 0, ledger.CurrentStreak)
}

func TestLedgerRoundTrip(t *testing.T) {
	store := NewFileLedgerStore(t.TempDir(), zap.NewNop())

	ledger := domain.NewFocusLedger()
	agg := ledger.EnsureDay("2026-08-30")
	agg.Append(domain.FocusSession{
		ID:              "a1b2",
		OccurredAt:      time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		DurationSeconds: 300,
	})
	agg.Append(domain.FocusSession{
		ID:              "c3d4",
		OccurredAt:      time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC),
		DurationSeconds: 60,
	})
	ledger.CurrentStreak = 1
	ledger.LongestStreak = 4

	require.NoError(t, store.Save(ledger))

	got, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, got.Days, domain.DateKey("2026-08-30"))
	assert.Equal(t, 360, got.Days["2026-08-30"].TotalSeconds)
	assert.Len(t, got.Days["2026-08-30"].Sessions, 2)
	assert.Equal(t, "a1b2", got.Days["2026-08-30"].Sessions[0].ID, "insertion order preserved")
	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, 4, got.LongestStreak)
}

func TestLedgerSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := NewFileLedgerStore(dir, zap.NewNop())

	require.NoError(t, store.Save(domain.NewFocusLedger()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "atomic replace leaves only the document")
	assert.Equal(t, ledgerFileName, entries[0].Name())
}

func TestLedgerCorruptFileFallsBackToEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ledgerFileName), []byte("}{"), 0600))

	store := NewFileLedgerStore(dir, zap.NewNop())
	ledger, err := store.Load()

	var perr *domain.PersistenceError
	assert.ErrorAs(t, err, &perr)
	require.NotNil(t, ledger)
	assert.Empty(t, ledger.Days)
}
