// Package delay implements the two delay-gate experiences as timed,
// input-gated state machines. Machines expose state snapshots and a
// one-shot outcome channel; rendering lives elsewhere.
package delay

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/frictiond/internal/domain"
)

// Outcome is the terminal result of a delay machine, signalled exactly once.
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeCancelled
)

// BreathingState is the breathing machine's lifecycle state.
type BreathingState int

const (
	BreathingRunning BreathingState = iota
	BreathingCompleted
	BreathingCancelled
)

// BreathingSnapshot is a render-ready view of the machine.
type BreathingSnapshot struct {
	State            BreathingState
	RemainingSeconds int
	TotalSeconds     int
	BypassEligible   bool
	Progress         float64 // 0..100, monotonically non-decreasing while running
}

// BreathingMachine is a fixed-duration countdown that must elapse
// before access is granted. Remaining time is derived from an absolute
// deadline, so ticks lost to process suspension reconcile by
// wall-clock delta on the next tick; the externally observed contract
// is still "decrements by one per second".
type BreathingMachine struct {
	mu             sync.Mutex
	clock          domain.Clock
	logger         *zap.Logger
	totalSeconds   int
	deadline       time.Time
	state          BreathingState
	bypassEligible bool
	done           chan Outcome
}

// NewBreathingMachine starts a countdown of delaySeconds. The bypass
// eligibility is fixed here for the lifetime of the instance.
func NewBreathingMachine(
	delaySeconds int,
	bypassEligible bool,
	clock domain.Clock,
	logger *zap.Logger,
) (*BreathingMachine, error) {
	if delaySeconds <= 0 {
		return nil, domain.ErrInvalidSettings
	}
	return &BreathingMachine{
		clock:          clock,
		logger:         logger,
		totalSeconds:   delaySeconds,
		deadline:       clock.Now().Add(time.Duration(delaySeconds) * time.Second),
		state:          BreathingRunning,
		bypassEligible: bypassEligible,
		done:           make(chan Outcome, 1),
	}, nil
}

// Tick reconciles remaining time against the deadline. Ticks are
// suspended outside the running state: they return the frozen snapshot
// without effect. Completion is signalled exactly once, even when
// several ticks were skipped and the deadline is long past.
func (m *BreathingMachine) Tick() BreathingSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != BreathingRunning {
		return m.snapshotLocked()
	}

	if m.remainingLocked() == 0 {
		m.state = BreathingCompleted
		m.done <- OutcomeCompleted
		m.logger.Info("breathing delay completed",
			zap.Int("total_seconds", m.totalSeconds))
	}

	return m.snapshotLocked()
}

// RequestCancel is the user-facing dismissal path. It is ignored
// unless the instance is bypass-eligible; the presentation layer also
// withholds the affordance, this guard is the machine-side backstop.
func (m *BreathingMachine) RequestCancel() {
	if !m.bypassEligible {
		return
	}
	m.Cancel()
}

// Cancel stops the countdown and signals cancellation exactly once.
// The machine honors an explicit programmatic cancel regardless of
// bypass eligibility (teardown, unmount); only the user-facing request
// path is gated.
func (m *BreathingMachine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != BreathingRunning {
		return
	}

	m.state = BreathingCancelled
	m.done <- OutcomeCancelled
	m.logger.Info("breathing delay cancelled",
		zap.Int("remaining_seconds", m.remainingLocked()),
		zap.Bool("bypass_eligible", m.bypassEligible))
}

// Snapshot returns the current render-ready state without advancing
// the machine.
func (m *BreathingMachine) Snapshot() BreathingSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Done delivers the terminal outcome exactly once.
func (m *BreathingMachine) Done() <-chan Outcome {
	return m.done
}

// BypassEligible reports the flag fixed at construction.
func (m *BreathingMachine) BypassEligible() bool {
	return m.bypassEligible
}

// remainingLocked derives whole seconds left, clamped at zero so the
// countdown never displays negative after missed ticks.
func (m *BreathingMachine) remainingLocked() int {
	until := m.deadline.Sub(m.clock.Now())
	if until <= 0 {
		return 0
	}
	return int(math.Ceil(until.Seconds()))
}

func (m *BreathingMachine) snapshotLocked() BreathingSnapshot {
	remaining := m.remainingLocked()
	return BreathingSnapshot{
		State:            m.state,
		RemainingSeconds: remaining,
		TotalSeconds:     m.totalSeconds,
		BypassEligible:   m.bypassEligible,
		Progress:         float64(m.totalSeconds-remaining) / float64(m.totalSeconds) * 100,
	}
}
