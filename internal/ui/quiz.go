package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/eliteGoblin/frictiond/internal/delay"
)

// QuizModel renders the flashcard quiz gate. All gating rules (dwell
// debounce, viewed flags, completion ordering) live in the machine;
// the model only forwards key events and draws snapshots.
type QuizModel struct {
	machine *delay.QuizMachine
	granted bool
}

// NewQuizModel wraps a running quiz machine.
func NewQuizModel(machine *delay.QuizMachine) QuizModel {
	return QuizModel{machine: machine}
}

// Granted reports whether the finished gate granted access.
func (m QuizModel) Granted() bool {
	return m.granted
}

// Init implements tea.Model.
func (m QuizModel) Init() tea.Cmd {
	return nil
}

// Update forwards key events to the machine.
func (m QuizModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case " ", "enter":
		m.machine.Flip()
	case "n", "right", "tab":
		m.machine.Advance()
	case "esc", "q", "ctrl+c":
		m.machine.Cancel()
		return m, tea.Quit
	}

	if m.machine.Snapshot().State == delay.QuizCompleted {
		m.granted = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the current card, deck markers, and key hints.
func (m QuizModel) View() string {
	snap := m.machine.Snapshot()

	markers := make([]string, delay.DeckSize)
	for i := range markers {
		switch {
		case i == snap.Index:
			markers[i] = "◉"
		case snap.Viewed[i]:
			markers[i] = "●"
		default:
			markers[i] = "○"
		}
	}

	var face, label string
	style := cardStyle
	if snap.Side == delay.SideQuestion {
		label = "Question"
		face = snap.Card.Question
	} else {
		label = "Answer"
		face = snap.Card.Answer
		style = answerCardStyle
	}

	hint := "space: flip"
	if snap.Viewed[snap.Index] {
		hint = "space: flip   n: next card"
	}
	hint += "   esc: cancel"

	return fmt.Sprintf("%s\n  %s   card %d of %d (%.0f%%)\n\n%s\n\n%s\n",
		titleStyle.Render("  Flashcard gate"),
		strings.Join(markers, " "),
		snap.Index+1,
		delay.DeckSize,
		snap.Progress,
		style.Render(label+"\n\n"+face),
		hintStyle.Render("  "+hint))
}
