package infra

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/eliteGoblin/frictiond/internal/domain"
)

// ProcessAppWatcher implements domain.AppGateProvider by scanning
// running processes with gopsutil. It stands in for the host
// platform's native app-detection layer: each flagged process name is
// mapped to an opaque token, and a launch is detected when a flagged
// process appears that was absent on the previous scan.
type ProcessAppWatcher struct {
	flagged map[domain.AppToken]string // token -> process name pattern
	running map[domain.AppToken]bool   // seen running on last scan
}

// NewProcessAppWatcher creates a watcher for the given process name patterns.
func NewProcessAppWatcher(patterns []string) *ProcessAppWatcher {
	flagged := make(map[domain.AppToken]string, len(patterns))
	for _, p := range patterns {
		flagged[tokenFor(p)] = p
	}
	return &ProcessAppWatcher{
		flagged: flagged,
		running: make(map[domain.AppToken]bool),
	}
}

// tokenFor derives a stable opaque token from a process name pattern.
// Consumers treat the token as uninterpretable.
func tokenFor(pattern string) domain.AppToken {
	sum := md5.Sum([]byte("frictiond-app-" + strings.ToLower(pattern)))
	return domain.AppToken(hex.EncodeToString(sum[:])[:16])
}

// IsAuthorized reports whether monitoring is permitted. Process
// scanning needs no separate grant, so this is always true.
func (w *ProcessAppWatcher) IsAuthorized() bool {
	return true
}

// RequestAuthorization asks for monitoring permission.
func (w *ProcessAppWatcher) RequestAuthorization() (bool, error) {
	return true, nil
}

// SelectedAppTokens returns the tokens of all flagged apps.
func (w *ProcessAppWatcher) SelectedAppTokens() ([]domain.AppToken, error) {
	tokens := make([]domain.AppToken, 0, len(w.flagged))
	for token := range w.flagged {
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// DetectLaunches returns tokens of flagged apps that started running
// since the previous scan.
func (w *ProcessAppWatcher) DetectLaunches() ([]domain.AppToken, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	nowRunning := make(map[domain.AppToken]bool, len(w.flagged))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue // Process may have exited
		}
		nameLower := strings.ToLower(name)
		for token, pattern := range w.flagged {
			if strings.Contains(nameLower, strings.ToLower(pattern)) {
				nowRunning[token] = true
			}
		}
	}

	var launched []domain.AppToken
	for token := range nowRunning {
		if !w.running[token] {
			launched = append(launched, token)
		}
	}
	w.running = nowRunning

	return launched, nil
}

// Ensure ProcessAppWatcher implements domain.AppGateProvider.
var _ domain.AppGateProvider = (*ProcessAppWatcher)(nil)
