package delay

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/frictiond/internal/domain"
)

// DeckSize is the number of cards drawn for one quiz gate.
const DeckSize = 5

// dwellDuration is the minimum time a card side must stay visible
// before the next flip or advance is accepted. The debounce re-arms
// after every flip; rapid double-taps collapse to one intended action.
// This friction is the point of the feature, not UI polish.
const dwellDuration = 400 * time.Millisecond

// QuizState is the quiz machine's lifecycle state.
type QuizState int

const (
	QuizInProgress QuizState = iota
	QuizCompleted
	QuizCancelled
)

// CardSide is which face of the current card is visible.
type CardSide int

const (
	SideQuestion CardSide = iota
	SideAnswer
)

// QuizSnapshot is a render-ready view of the machine.
type QuizSnapshot struct {
	State    QuizState
	Index    int
	Side     CardSide
	Card     domain.Card
	Viewed   [DeckSize]bool
	Progress float64 // 0..100, deck position, not questions completed
}

// QuizMachine gates access behind viewing five question/answer pairs,
// in order, each held for a minimum dwell time. Completion is only
// reachable by advancing past the final card after its answer has been
// viewed; there is no all-viewed shortcut.
type QuizMachine struct {
	mu            sync.Mutex
	clock         domain.Clock
	logger        *zap.Logger
	cards         [DeckSize]domain.Card
	index         int
	side          CardSide
	viewed        [DeckSize]bool
	sideChangedAt time.Time
	state         QuizState
	done          chan Outcome
}

// NewQuizMachine draws DeckSize distinct cards from the quiz-eligible
// pool, without replacement. Fewer eligible cards than DeckSize fails
// with domain.ErrInsufficientCards; the presentation layer must then
// offer cancel only.
func NewQuizMachine(pool []domain.Card, clock domain.Clock, logger *zap.Logger) (*QuizMachine, error) {
	if len(pool) < DeckSize {
		return nil, domain.ErrInsufficientCards
	}

	m := &QuizMachine{
		clock:         clock,
		logger:        logger,
		side:          SideQuestion,
		sideChangedAt: clock.Now(),
		state:         QuizInProgress,
		done:          make(chan Outcome, 1),
	}

	for i, j := range rand.Perm(len(pool))[:DeckSize] {
		m.cards[i] = pool[j]
	}

	return m, nil
}

// Flip toggles the current card between question and answer. The first
// flip to the answer side marks the card viewed (idempotent on repeat
// flips). A flip within the dwell window of the last side change is
// rejected as a no-op.
func (m *QuizMachine) Flip() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != QuizInProgress || !m.dwellClearedLocked() {
		return
	}

	if m.side == SideQuestion {
		m.side = SideAnswer
		m.viewed[m.index] = true
	} else {
		m.side = SideQuestion
	}
	m.sideChangedAt = m.clock.Now()
}

// Advance moves to the next card, or completes the quiz past the final
// one. It is a no-op unless the current card's answer has been viewed
// and the dwell window has cleared. Completion is signalled exactly
// once; further calls after completion do nothing.
func (m *QuizMachine) Advance() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != QuizInProgress || !m.viewed[m.index] || !m.dwellClearedLocked() {
		return
	}

	if m.index < DeckSize-1 {
		m.index++
		m.side = SideQuestion
		m.sideChangedAt = m.clock.Now()
		return
	}

	// Advancing past the final viewed card is the only way to complete.
	m.state = QuizCompleted
	m.done <- OutcomeCompleted
	m.logger.Info("quiz gate completed")
}

// Cancel abandons the quiz and signals cancellation exactly once.
func (m *QuizMachine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != QuizInProgress {
		return
	}

	m.state = QuizCancelled
	m.done <- OutcomeCancelled
	m.logger.Info("quiz gate cancelled", zap.Int("index", m.index))
}

// Snapshot returns the current render-ready state.
func (m *QuizMachine) Snapshot() QuizSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	progress := float64(m.index) / DeckSize * 100
	if m.state == QuizCompleted {
		progress = 100
	}

	return QuizSnapshot{
		State:    m.state,
		Index:    m.index,
		Side:     m.side,
		Card:     m.cards[m.index],
		Viewed:   m.viewed,
		Progress: progress,
	}
}

// Done delivers the terminal outcome exactly once.
func (m *QuizMachine) Done() <-chan Outcome {
	return m.done
}

// dwellClearedLocked reports whether the minimum view time has elapsed
// since the current side became visible. Callers hold m.mu.
func (m *QuizMachine) dwellClearedLocked() bool {
	return m.clock.Now().Sub(m.sideChangedAt) >= dwellDuration
}
