// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import "time"

// DateKey is a local calendar date in "YYYY-MM-DD" form.
// All daily aggregation is keyed by the device's local date.
type DateKey string

const dateKeyLayout = "2006-01-02"

// DateKeyFor returns the DateKey for t in t's location.
func DateKeyFor(t time.Time) DateKey {
	return DateKey(t.Format(dateKeyLayout))
}

// Prev returns the DateKey for the calendar day before k.
// Parsing a well-formed key cannot fail; a malformed key returns "".
func (k DateKey) Prev() DateKey {
	t, err := time.ParseInLocation(dateKeyLayout, string(k), time.Local)
	if err != nil {
		return ""
	}
	return DateKeyFor(t.AddDate(0, 0, -1))
}

// FocusSession is one completed, timed interval of tracked concentration.
// Immutable once created; removed only by bulk reset.
type FocusSession struct {
	ID              string    `json:"id"`
	OccurredAt      time.Time `json:"occurred_at"`
	DurationSeconds int       `json:"duration_seconds"`
}

// DailyAggregate is the sum and list of all focus sessions for one
// local calendar date. Sessions are kept in insertion order, which is
// chronological. TotalSeconds always equals the sum of the contained
// sessions' durations.
type DailyAggregate struct {
	Date         DateKey        `json:"date"`
	TotalSeconds int            `json:"total_seconds"`
	Sessions     []FocusSession `json:"sessions"`
}

// Append adds a session and keeps the total in sync.
func (a *DailyAggregate) Append(s FocusSession) {
	a.Sessions = append(a.Sessions, s)
	a.TotalSeconds += s.DurationSeconds
}

// FocusLedger is the aggregate root persisted as a whole document:
// per-date aggregates plus the derived streak counters.
// Invariant: LongestStreak >= CurrentStreak after every update.
type FocusLedger struct {
	Version       int                         `json:"version"`
	Days          map[DateKey]*DailyAggregate `json:"days"`
	CurrentStreak int                         `json:"current_streak"`
	LongestStreak int                         `json:"longest_streak"`
}

// NewFocusLedger returns an empty ledger.
func NewFocusLedger() *FocusLedger {
	return &FocusLedger{
		Version: 1,
		Days:    make(map[DateKey]*DailyAggregate),
	}
}

// Day returns the aggregate for key, or nil if none exists.
func (l *FocusLedger) Day(key DateKey) *DailyAggregate {
	return l.Days[key]
}

// EnsureDay returns the aggregate for key, creating it lazily.
func (l *FocusLedger) EnsureDay(key DateKey) *DailyAggregate {
	if l.Days == nil {
		l.Days = make(map[DateKey]*DailyAggregate)
	}
	agg, ok := l.Days[key]
	if !ok {
		agg = &DailyAggregate{Date: key}
		l.Days[key] = agg
	}
	return agg
}

// Settings holds the user-tunable engine parameters. Owned exclusively
// by the settings store; other components read a copy and never persist
// their own.
type Settings struct {
	DelaySeconds            int  `json:"delay_seconds"`
	QuizModeEnabled         bool `json:"quiz_mode_enabled"`
	DailyFocusTargetMinutes int  `json:"daily_focus_target_minutes"`
	DailyBypassLimit        int  `json:"daily_bypass_limit"`
}

// DefaultSettings returns the out-of-box configuration.
func DefaultSettings() Settings {
	return Settings{
		DelaySeconds:            30,
		QuizModeEnabled:         false,
		DailyFocusTargetMinutes: 30,
		DailyBypassLimit:        3,
	}
}

// DailyTargetSeconds converts the daily focus target to seconds.
func (s Settings) DailyTargetSeconds() int {
	return s.DailyFocusTargetMinutes * 60
}

// Validate checks the settings constraints.
func (s Settings) Validate() error {
	if s.DelaySeconds <= 0 {
		return ErrInvalidSettings
	}
	if s.DailyFocusTargetMinutes <= 0 {
		return ErrInvalidSettings
	}
	if s.DailyBypassLimit < 0 {
		return ErrInvalidSettings
	}
	return nil
}

// Card is one flashcard from the user's pool.
type Card struct {
	ID           string `json:"id"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	QuizEligible bool   `json:"quiz_eligible"`
}

// DelayMode identifies which delay experience to present.
type DelayMode string

const (
	ModeBreathing DelayMode = "breathing"
	ModeQuiz      DelayMode = "quiz"
)

// DelayDecision is the selector's verdict for one access attempt.
// BypassEligible is evaluated once at selection time and held fixed for
// the lifetime of the delay instance; it is meaningless for quiz mode.
type DelayDecision struct {
	Mode           DelayMode
	BypassEligible bool
}

// AppToken is an opaque identifier for a flagged application, issued by
// the host platform's app-selection provider. The engine never
// interprets its content.
type AppToken string
