package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/eliteGoblin/frictiond/internal/delay"
	"github.com/eliteGoblin/frictiond/internal/domain"
)

// TerminalGater implements daemon.Gater by driving a delay machine
// under a bubbletea program.
type TerminalGater struct {
	settings domain.SettingsStore
	cards    domain.CardSource
	clock    domain.Clock
	logger   *zap.Logger
}

// NewTerminalGater creates a terminal-backed gate runner.
func NewTerminalGater(
	settings domain.SettingsStore,
	cards domain.CardSource,
	clock domain.Clock,
	logger *zap.Logger,
) *TerminalGater {
	return &TerminalGater{
		settings: settings,
		cards:    cards,
		clock:    clock,
		logger:   logger,
	}
}

// RunGate presents the decided delay experience and reports whether
// access was granted.
func (g *TerminalGater) RunGate(ctx context.Context, token domain.AppToken, decision domain.DelayDecision) (bool, error) {
	settings, err := g.settings.Load()
	if err != nil {
		g.logger.Warn("settings load failed for gate, using defaults", zap.Error(err))
	}

	switch decision.Mode {
	case domain.ModeQuiz:
		pool, err := g.cards.QuizEligibleCards()
		if err != nil {
			return false, fmt.Errorf("failed to load quiz cards: %w", err)
		}

		machine, err := delay.NewQuizMachine(pool, g.clock, g.logger)
		if errors.Is(err, domain.ErrInsufficientCards) {
			// Cancel is the only offer in this state.
			fmt.Printf("Not enough quiz-eligible flashcards (%d of %d needed). Access denied.\n",
				len(pool), delay.DeckSize)
			return false, nil
		}
		if err != nil {
			return false, err
		}

		final, err := tea.NewProgram(NewQuizModel(machine), tea.WithContext(ctx)).Run()
		if err != nil {
			return false, err
		}
		return final.(QuizModel).Granted(), nil

	case domain.ModeBreathing:
		machine, err := delay.NewBreathingMachine(
			settings.DelaySeconds, decision.BypassEligible, g.clock, g.logger)
		if err != nil {
			return false, err
		}

		final, err := tea.NewProgram(NewBreathingModel(machine), tea.WithContext(ctx)).Run()
		if err != nil {
			return false, err
		}
		return final.(BreathingModel).Granted(), nil

	default:
		return false, fmt.Errorf("unknown delay mode %q", decision.Mode)
	}
}
