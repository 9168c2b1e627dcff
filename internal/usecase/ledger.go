// Package usecase contains application business logic.
package usecase

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eliteGoblin/frictiond/internal/domain"
)

// Ledger is the durable record of focus effort and the derivation of
// streaks. The ledger document is loaded once at construction and
// written back, whole, after every mutation. A mutex serializes
// mutation so concurrent recordings for the same date are additive.
type Ledger struct {
	mu       sync.Mutex
	ledger   *domain.FocusLedger
	store    domain.LedgerStore
	settings domain.SettingsStore
	clock    domain.Clock
	logger   *zap.Logger
}

// NewLedger loads the persisted ledger and wraps it in a service.
// A failed load falls back to an empty ledger; storage loss never
// blocks the user from proceeding.
func NewLedger(
	store domain.LedgerStore,
	settings domain.SettingsStore,
	clock domain.Clock,
	logger *zap.Logger,
) *Ledger {
	ledger, err := store.Load()
	if err != nil {
		logger.Warn("ledger load failed, starting empty", zap.Error(err))
	}
	if ledger == nil {
		ledger = domain.NewFocusLedger()
	}
	return &Ledger{
		ledger:   ledger,
		store:    store,
		settings: settings,
		clock:    clock,
		logger:   logger,
	}
}

// RecordSession appends a completed focus session to today's aggregate,
// recomputes streaks, and persists the whole ledger. "Today" is the
// local date at call time, so a session spanning midnight is attributed
// to the day it completes on.
//
// A non-positive duration is a caller bug and is rejected with
// domain.ErrInvalidDuration before any state changes. A persistence
// failure is logged and returned, but the in-memory mutation stands:
// today's cumulative total is observable immediately after return.
func (l *Ledger) RecordSession(durationSeconds int) (domain.FocusSession, error) {
	if durationSeconds <= 0 {
		return domain.FocusSession{}, domain.ErrInvalidDuration
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	today := domain.DateKeyFor(now)

	session := domain.FocusSession{
		ID:              uuid.NewString(),
		OccurredAt:      now,
		DurationSeconds: durationSeconds,
	}

	l.ledger.EnsureDay(today).Append(session)
	l.recomputeStreaks(today)

	l.logger.Info("focus session recorded",
		zap.String("session_id", session.ID),
		zap.String("date", string(today)),
		zap.Int("duration_seconds", durationSeconds),
		zap.Int("todays_total_seconds", l.ledger.Days[today].TotalSeconds))

	return session, l.persist()
}

// TodaysTotalSeconds returns today's accumulated seconds, or 0 if no
// aggregate exists yet for today. Pure read.
func (l *Ledger) TodaysTotalSeconds() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	agg := l.ledger.Day(domain.DateKeyFor(l.clock.Now()))
	if agg == nil {
		return 0
	}
	return agg.TotalSeconds
}

// Streaks returns the current and longest continuous-goal-met streaks.
func (l *Ledger) Streaks() (current, longest int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ledger.CurrentStreak, l.ledger.LongestStreak
}

// SessionCount returns the number of sessions recorded for today.
func (l *Ledger) SessionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	agg := l.ledger.Day(domain.DateKeyFor(l.clock.Now()))
	if agg == nil {
		return 0
	}
	return len(agg.Sessions)
}

// ResetToday clears today's sessions and total. Prior days are
// untouched; the streak is recomputed, so today no longer counts
// toward it unless a new session is recorded. The longest streak is
// never decreased.
func (l *Ledger) ResetToday() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := domain.DateKeyFor(l.clock.Now())
	delete(l.ledger.Days, today)
	l.recomputeStreaks(today)

	l.logger.Info("today's focus sessions reset", zap.String("date", string(today)))

	return l.persist()
}

// ResetAll wipes the whole ledger back to factory state. This is the
// only way sessions for prior days are ever deleted.
func (l *Ledger) ResetAll() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ledger = domain.NewFocusLedger()
	l.logger.Info("focus ledger wiped")

	return l.persist()
}

// Snapshot returns a deep copy of the ledger document for rendering.
func (l *Ledger) Snapshot() domain.FocusLedger {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := domain.FocusLedger{
		Version:       l.ledger.Version,
		Days:          make(map[domain.DateKey]*domain.DailyAggregate, len(l.ledger.Days)),
		CurrentStreak: l.ledger.CurrentStreak,
		LongestStreak: l.ledger.LongestStreak,
	}
	for key, agg := range l.ledger.Days {
		copied := *agg
		copied.Sessions = append([]domain.FocusSession(nil), agg.Sessions...)
		out.Days[key] = &copied
	}
	return out
}

// recomputeStreaks rederives the streak counters. Callers hold l.mu.
func (l *Ledger) recomputeStreaks(today domain.DateKey) {
	settings, err := l.settings.Load()
	if err != nil {
		l.logger.Warn("settings load failed during streak recompute, using defaults", zap.Error(err))
	}

	l.ledger.CurrentStreak = WalkStreak(l.ledger, today, settings.DailyTargetSeconds())
	if l.ledger.CurrentStreak > l.ledger.LongestStreak {
		l.ledger.LongestStreak = l.ledger.CurrentStreak
	}
}

// WalkStreak counts consecutive goal-met days ending at (or adjacent
// to) today. Today counts if its aggregate meets the target; otherwise
// the walk starts at yesterday with zero. A missing date key or a
// below-target aggregate terminates the walk, so only unbroken recent
// days count.
func WalkStreak(ledger *domain.FocusLedger, today domain.DateKey, targetSeconds int) int {
	streak := 0
	if agg := ledger.Day(today); agg != nil && agg.TotalSeconds >= targetSeconds {
		streak = 1
	}

	for day := today.Prev(); day != ""; day = day.Prev() {
		agg := ledger.Day(day)
		if agg == nil || agg.TotalSeconds < targetSeconds {
			break
		}
		streak++
	}

	return streak
}

// persist writes the ledger back after a mutation. Callers hold l.mu.
// Failure is logged and surfaced, never fatal to in-memory state.
func (l *Ledger) persist() error {
	if err := l.store.Save(l.ledger); err != nil {
		l.logger.Error("ledger persist failed", zap.Error(err))
		return err
	}
	return nil
}
