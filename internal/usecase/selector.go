package usecase

import (
	"go.uber.org/zap"

	"github.com/eliteGoblin/frictiond/internal/domain"
)

// Selector chooses the delay experience for an app-open attempt. It
// holds no persistent state of its own; settings and ledger are
// explicit constructor dependencies.
type Selector struct {
	settings domain.SettingsStore
	ledger   *Ledger
	logger   *zap.Logger
}

// NewSelector creates a delay-gate selector.
func NewSelector(settings domain.SettingsStore, ledger *Ledger, logger *zap.Logger) *Selector {
	return &Selector{
		settings: settings,
		ledger:   ledger,
		logger:   logger,
	}
}

// Select reads current settings and today's total and decides which
// delay experience to present. Bypass eligibility is fixed at this
// moment and is not re-evaluated mid-countdown.
func (s *Selector) Select() domain.DelayDecision {
	settings, err := s.settings.Load()
	if err != nil {
		s.logger.Warn("settings load failed during selection, using defaults", zap.Error(err))
	}

	decision := Decide(settings, s.ledger.TodaysTotalSeconds())

	s.logger.Info("delay experience selected",
		zap.String("mode", string(decision.Mode)),
		zap.Bool("bypass_eligible", decision.BypassEligible))

	return decision
}

// Decide is the pure decision function. Quiz mode wins outright
// (answering is itself the bypass mechanism); otherwise the breathing
// delay may be bypassed only when today's goal is already met.
func Decide(settings domain.Settings, todaysTotalSeconds int) domain.DelayDecision {
	if settings.QuizModeEnabled {
		return domain.DelayDecision{Mode: domain.ModeQuiz}
	}
	return domain.DelayDecision{
		Mode:           domain.ModeBreathing,
		BypassEligible: todaysTotalSeconds >= settings.DailyTargetSeconds(),
	}
}
