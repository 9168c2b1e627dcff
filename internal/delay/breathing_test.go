package delay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// drainOutcome returns the signalled outcome, or false if none fired.
func drainOutcome(ch <-chan Outcome) (Outcome, bool) {
	select {
	case o := <-ch:
		return o, true
	default:
		return 0, false
	}
}

func TestBreathingRejectsNonPositiveDuration(t *testing.T) {
	clock := newFakeClock()

	_, err := NewBreathingMachine(0, false, clock, zap.NewNop())
	assert.Error(t, err)

	_, err = NewBreathingMachine(-3, false, clock, zap.NewNop())
	assert.Error(t, err)
}

func TestBreathingCompletesAfterFullCountdown(t *testing.T) {
	clock := newFakeClock()
	m, err := NewBreathingMachine(5, false, clock, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 5, m.Snapshot().RemainingSeconds)
	assert.Equal(t, 0.0, m.Snapshot().Progress)

	for i := 1; i <= 5; i++ {
		clock.advance(time.Second)
		snap := m.Tick()
		assert.Equal(t, 5-i, snap.RemainingSeconds)
	}

	snap := m.Snapshot()
	assert.Equal(t, BreathingCompleted, snap.State)
	assert.Equal(t, 0, snap.RemainingSeconds)
	assert.Equal(t, 100.0, snap.Progress)

	outcome, fired := drainOutcome(m.Done())
	require.True(t, fired, "completion should fire")
	assert.Equal(t, OutcomeCompleted, outcome)
}

func TestBreathingCompletionFiresExactlyOnce(t *testing.T) {
	clock := newFakeClock()
	m, err := NewBreathingMachine(2, false, clock, zap.NewNop())
	require.NoError(t, err)

	clock.advance(10 * time.Second)
	m.Tick()
	m.Tick()
	m.Tick()

	_, fired := drainOutcome(m.Done())
	require.True(t, fired)
	_, fired = drainOutcome(m.Done())
	assert.False(t, fired, "completion must not double-fire")
}

func TestBreathingMissedTicksReconcileWithoutGoingNegative(t *testing.T) {
	clock := newFakeClock()
	m, err := NewBreathingMachine(10, false, clock, zap.NewNop())
	require.NoError(t, err)

	// Process suspended: one tick arrives long after the deadline.
	clock.advance(45 * time.Second)
	snap := m.Tick()

	assert.Equal(t, BreathingCompleted, snap.State)
	assert.Equal(t, 0, snap.RemainingSeconds)
	assert.Equal(t, 100.0, snap.Progress)
}

func TestBreathingProgressMonotoneWhileRunning(t *testing.T) {
	clock := newFakeClock()
	m, err := NewBreathingMachine(4, false, clock, zap.NewNop())
	require.NoError(t, err)

	last := -1.0
	for i := 0; i < 4; i++ {
		clock.advance(time.Second)
		snap := m.Tick()
		assert.GreaterOrEqual(t, snap.Progress, last)
		last = snap.Progress
	}
}

func TestBreathingUserCancelIgnoredWhenNotBypassEligible(t *testing.T) {
	clock := newFakeClock()
	m, err := NewBreathingMachine(5, false, clock, zap.NewNop())
	require.NoError(t, err)

	m.RequestCancel()

	snap := m.Snapshot()
	assert.Equal(t, BreathingRunning, snap.State)

	_, fired := drainOutcome(m.Done())
	assert.False(t, fired, "no completion or cancellation signal may fire")
}

func TestBreathingUserCancelHonoredWhenBypassEligible(t *testing.T) {
	clock := newFakeClock()
	m, err := NewBreathingMachine(5, true, clock, zap.NewNop())
	require.NoError(t, err)

	clock.advance(time.Second)
	m.Tick()
	m.RequestCancel()
	m.RequestCancel() // second request is a no-op

	assert.Equal(t, BreathingCancelled, m.Snapshot().State)

	outcome, fired := drainOutcome(m.Done())
	require.True(t, fired)
	assert.Equal(t, OutcomeCancelled, outcome)
	_, fired = drainOutcome(m.Done())
	assert.False(t, fired, "cancellation must signal exactly once")
}

func TestBreathingProgrammaticCancelAlwaysHonored(t *testing.T) {
	clock := newFakeClock()
	m, err := NewBreathingMachine(5, false, clock, zap.NewNop())
	require.NoError(t, err)

	m.Cancel()

	assert.Equal(t, BreathingCancelled, m.Snapshot().State)
	outcome, fired := drainOutcome(m.Done())
	require.True(t, fired)
	assert.Equal(t, OutcomeCancelled, outcome)
}

func TestBreathingTicksSuspendedAfterCancel(t *testing.T) {
	clock := newFakeClock()
	m, err := NewBreathingMachine(5, true, clock, zap.NewNop())
	require.NoError(t, err)

	m.Cancel()
	<-m.Done()

	clock.advance(time.Minute)
	snap := m.Tick()
	assert.Equal(t, BreathingCancelled, snap.State)

	_, fired := drainOutcome(m.Done())
	assert.False(t, fired, "no completion after cancellation")
}
