// Package daemon implements the gatekeeper loop that watches for
// flagged-app launches and interposes a delay gate.
package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/frictiond/internal/domain"
	"github.com/eliteGoblin/frictiond/internal/usecase"
)

// Gater runs one delay experience for one access attempt and reports
// whether access was granted. Implementations drive the breathing or
// quiz machine under whatever presentation layer is in play.
type Gater interface {
	RunGate(ctx context.Context, token domain.AppToken, decision domain.DelayDecision) (granted bool, err error)
}

// GatekeeperConfig holds gatekeeper daemon configuration.
type GatekeeperConfig struct {
	ScanInterval time.Duration // How often to poll for flagged-app launches
}

// DefaultGatekeeperConfig returns default gatekeeper configuration.
func DefaultGatekeeperConfig() GatekeeperConfig {
	return GatekeeperConfig{
		ScanInterval: 2 * time.Second,
	}
}

// Gatekeeper polls the app-gate provider for flagged-app launches and
// runs the selector plus one delay machine per access attempt. One
// delay machine runs at a time; scanning pauses while a gate is open.
type Gatekeeper struct {
	config   GatekeeperConfig
	provider domain.AppGateProvider
	selector *usecase.Selector
	gater    Gater
	logger   *zap.Logger
}

// NewGatekeeper creates a new gatekeeper daemon.
func NewGatekeeper(
	config GatekeeperConfig,
	provider domain.AppGateProvider,
	selector *usecase.Selector,
	gater Gater,
	logger *zap.Logger,
) *Gatekeeper {
	return &Gatekeeper{
		config:   config,
		provider: provider,
		selector: selector,
		gater:    gater,
		logger:   logger,
	}
}

// Run starts the gatekeeper loop. This blocks until context is canceled.
func (g *Gatekeeper) Run(ctx context.Context) error {
	if !g.provider.IsAuthorized() {
		granted, err := g.provider.RequestAuthorization()
		if err != nil {
			g.logger.Error("authorization request failed", zap.Error(err))
			return err
		}
		if !granted {
			g.logger.Warn("monitoring not authorized, gatekeeper idle")
		}
	}

	tokens, err := g.provider.SelectedAppTokens()
	if err != nil {
		g.logger.Error("failed to read selected app tokens", zap.Error(err))
		return err
	}

	g.logger.Info("gatekeeper started",
		zap.Int("flagged_apps", len(tokens)),
		zap.Duration("scan_interval", g.config.ScanInterval))

	ticker := time.NewTicker(g.config.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.logger.Info("gatekeeper stopping")
			return ctx.Err()

		case <-ticker.C:
			g.scan(ctx)
		}
	}
}

// scan checks for newly launched flagged apps and gates each attempt.
func (g *Gatekeeper) scan(ctx context.Context) {
	launched, err := g.provider.DetectLaunches()
	if err != nil {
		g.logger.Warn("launch detection failed", zap.Error(err))
		return
	}

	for _, token := range launched {
		decision := g.selector.Select()

		granted, err := g.gater.RunGate(ctx, token, decision)
		if err != nil {
			g.logger.Error("delay gate failed",
				zap.String("app_token", string(token)),
				zap.Error(err))
			continue
		}

		if granted {
			g.logger.Info("access granted",
				zap.String("app_token", string(token)),
				zap.String("mode", string(decision.Mode)))
		} else {
			g.logger.Info("access denied",
				zap.String("app_token", string(token)),
				zap.String("mode", string(decision.Mode)))
		}
	}
}
