package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/eliteGoblin/frictiond/internal/delay"
)

// tickMsg drives the machine's 1-second tick contract.
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// BreathingModel renders the breathing delay countdown. The skip
// affordance is shown only when the machine is bypass-eligible; an
// ineligible user sees no way out besides waiting (interrupting the
// program still cancels by contract, and access stays denied).
type BreathingModel struct {
	machine  *delay.BreathingMachine
	progress progress.Model
	granted  bool
}

// NewBreathingModel wraps a running breathing machine.
func NewBreathingModel(machine *delay.BreathingMachine) BreathingModel {
	return BreathingModel{
		machine:  machine,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

// Granted reports whether the finished gate granted access.
func (m BreathingModel) Granted() bool {
	return m.granted
}

// Init starts the 1-second tick.
func (m BreathingModel) Init() tea.Cmd {
	return tickCmd()
}

// Update handles ticks and key events.
func (m BreathingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		snap := m.machine.Tick()
		if snap.State == delay.BreathingCompleted {
			m.granted = true
			return m, tea.Quit
		}
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - 8
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "s":
			if m.machine.BypassEligible() {
				m.machine.RequestCancel()
				m.granted = true
				return m, tea.Quit
			}
		case "ctrl+c":
			m.machine.Cancel()
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the countdown and progress bar.
func (m BreathingModel) View() string {
	snap := m.machine.Snapshot()

	remaining := counterStyle.Render(fmt.Sprintf("%ds", snap.RemainingSeconds))
	bar := m.progress.ViewAs(snap.Progress / 100)

	hint := "Breathe in... breathe out."
	if snap.BypassEligible {
		hint = "Daily goal met — press s to skip."
	}

	return fmt.Sprintf("%s\n\n  %s remaining\n\n  %s\n\n%s\n",
		titleStyle.Render("  Take a breath"),
		remaining,
		bar,
		hintStyle.Render("  "+hint))
}
