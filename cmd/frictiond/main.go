// Package main is the CLI entry point for frictiond.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eliteGoblin/frictiond/internal/config"
	"github.com/eliteGoblin/frictiond/internal/daemon"
	"github.com/eliteGoblin/frictiond/internal/domain"
	"github.com/eliteGoblin/frictiond/internal/infra"
	"github.com/eliteGoblin/frictiond/internal/logging"
	"github.com/eliteGoblin/frictiond/internal/ui"
	"github.com/eliteGoblin/frictiond/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "frictiond",
	Short: "Distraction friction - earn your way into flagged apps",
	Long: `frictiond tracks focus sessions and interposes a delay gate
(a timed breathing pause or a flashcard quiz) whenever a flagged
application is opened. Meet your daily focus goal and the breathing
gate becomes skippable.`,
	Version: Version,
}

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Run a delay gate as if a flagged app was opened",
	Long: `Simulates one app-open attempt: consults settings and today's
focus total, picks the breathing or quiz experience, and runs it in
the terminal. Exits 0 when access is granted, 1 when denied.`,
	RunE: runGate,
}

var focusCmd = &cobra.Command{
	Use:   "focus <minutes>",
	Short: "Run a foreground focus timer and record the session",
	Args:  cobra.ExactArgs(1),
	RunE:  runFocus,
}

var recordCmd = &cobra.Command{
	Use:   "record <seconds>",
	Short: "Record an already-completed focus session",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecord,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's focus total and streaks",
	RunE:  runStatus,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset today's focus sessions (use --all to wipe the ledger)",
	RunE:  runReset,
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show current settings",
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update settings",
	RunE:  runSettingsSet,
}

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Manage the flashcard pool",
	RunE:  runCardsList,
}

var cardsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a flashcard",
	RunE:  runCardsAdd,
}

var cardsFlagCmd = &cobra.Command{
	Use:   "flag <id>",
	Short: "Flag or unflag a card for the delay quiz",
	Args:  cobra.ExactArgs(1),
	RunE:  runCardsFlag,
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the gatekeeper daemon in the foreground",
	Long: `Polls for launches of flagged applications and interposes a
delay gate for each. Flagged process patterns come from the
flagged_processes list in ~/.frictiond/config.toml.`,
	RunE: runDaemon,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run:   runVersion,
}

var (
	resetAll       bool
	jsonOutput     bool
	setDelaySecs   int
	setTargetMins  int
	setBypassLimit int
	setQuizMode    string
	cardQuestion   string
	cardAnswer     string
	cardEligible   bool
)

func init() {
	resetCmd.Flags().BoolVar(&resetAll, "all", false, "Wipe the whole ledger, not just today")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	settingsSetCmd.Flags().IntVar(&setDelaySecs, "delay-seconds", 0, "Breathing delay duration in seconds")
	settingsSetCmd.Flags().IntVar(&setTargetMins, "target-minutes", 0, "Daily focus target in minutes")
	settingsSetCmd.Flags().IntVar(&setBypassLimit, "bypass-limit", -1, "Daily bypass limit (reserved)")
	settingsSetCmd.Flags().StringVar(&setQuizMode, "quiz-mode", "", "Enable quiz mode: true or false")
	settingsCmd.AddCommand(settingsSetCmd)

	cardsAddCmd.Flags().StringVar(&cardQuestion, "question", "", "Question text")
	cardsAddCmd.Flags().StringVar(&cardAnswer, "answer", "", "Answer text")
	cardsAddCmd.Flags().BoolVar(&cardEligible, "eligible", true, "Flag the card for the delay quiz")
	_ = cardsAddCmd.MarkFlagRequired("question")
	_ = cardsAddCmd.MarkFlagRequired("answer")
	cardsFlagCmd.Flags().BoolVar(&cardEligible, "eligible", true, "Eligibility value to set")
	cardsCmd.AddCommand(cardsAddCmd)
	cardsCmd.AddCommand(cardsFlagCmd)

	rootCmd.AddCommand(gateCmd)
	rootCmd.AddCommand(focusCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(cardsCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(versionCmd)
}

// engine bundles the wired components shared by most commands.
type engine struct {
	cfg      config.Config
	logger   *zap.Logger
	clock    domain.Clock
	settings *infra.FileSettingsStore
	ledger   *usecase.Ledger
	selector *usecase.Selector
}

// buildEngine wires stores, ledger and selector from the process config.
// Pass daemonMode=true to log to the rotating file instead of stderr.
func buildEngine(daemonMode bool) (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logFile := ""
	if daemonMode {
		logFile = cfg.LogFile
	}
	logger := logging.NewLogger(logFile, cfg.LogLevel)

	clock := infra.NewSystemClock()
	settings := infra.NewFileSettingsStore(cfg.DataDir, logger)
	ledgerStore := infra.NewFileLedgerStore(cfg.DataDir, logger)
	ledger := usecase.NewLedger(ledgerStore, settings, clock, logger)
	selector := usecase.NewSelector(settings, ledger, logger)

	return &engine{
		cfg:      cfg,
		logger:   logger,
		clock:    clock,
		settings: settings,
		ledger:   ledger,
		selector: selector,
	}, nil
}

// openCardStore opens the encrypted flashcard database, creating the
// key on first use.
func openCardStore(cfg config.Config) (*infra.EncryptedCardStore, error) {
	key, err := infra.EnsureKey(infra.NewFileKeyProvider(cfg.DataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare card store key: %w", err)
	}
	return infra.NewEncryptedCardStore(cfg.DataDir, key)
}

func runGate(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine(false)
	if err != nil {
		return err
	}
	defer func() { _ = eng.logger.Sync() }()

	cardStore, err := openCardStore(eng.cfg)
	if err != nil {
		return err
	}
	defer cardStore.Close()

	gater := ui.NewTerminalGater(eng.settings, cardStore, eng.clock, eng.logger)

	decision := eng.selector.Select()
	granted, err := gater.RunGate(cmd.Context(), domain.AppToken("manual"), decision)
	if err != nil {
		return err
	}

	if granted {
		fmt.Println("Access granted.")
		return nil
	}
	fmt.Println("Access denied.")
	os.Exit(1)
	return nil
}

func runFocus(cmd *cobra.Command, args []string) error {
	minutes, err := strconv.Atoi(args[0])
	if err != nil || minutes <= 0 {
		return fmt.Errorf("minutes must be a positive integer, got %q", args[0])
	}

	eng, err := buildEngine(false)
	if err != nil {
		return err
	}
	defer func() { _ = eng.logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	total := time.Duration(minutes) * time.Minute
	start := eng.clock.Now()
	deadline := start.Add(total)

	fmt.Printf("Focusing for %d minute(s). Ctrl+C stops early and records elapsed time.\n", minutes)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			elapsed := int(eng.clock.Now().Sub(start).Seconds())
			fmt.Println()
			if elapsed < 1 {
				fmt.Println("Nothing to record.")
				return nil
			}
			return recordAndReport(eng, elapsed)

		case <-ticker.C:
			remaining := time.Until(deadline)
			if remaining <= 0 {
				fmt.Println()
				return recordAndReport(eng, int(total.Seconds()))
			}
			fmt.Printf("\r  %s remaining ", remaining.Round(time.Second))
		}
	}
}

func recordAndReport(eng *engine, seconds int) error {
	if _, err := eng.ledger.RecordSession(seconds); err != nil {
		var perr *domain.PersistenceError
		if errors.As(err, &perr) {
			fmt.Printf("Warning: session counted but not saved: %v\n", perr)
		} else {
			return err
		}
	}
	current, longest := eng.ledger.Streaks()
	fmt.Printf("Recorded %ds of focus. Today: %ds. Streak: %d (best %d).\n",
		seconds, eng.ledger.TodaysTotalSeconds(), current, longest)
	return nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	seconds, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("seconds must be an integer, got %q", args[0])
	}

	eng, err := buildEngine(false)
	if err != nil {
		return err
	}
	defer func() { _ = eng.logger.Sync() }()

	if seconds <= 0 {
		return domain.ErrInvalidDuration
	}
	return recordAndReport(eng, seconds)
}

func runStatus(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine(false)
	if err != nil {
		return err
	}
	defer func() { _ = eng.logger.Sync() }()

	settings, _ := eng.settings.Load()
	total := eng.ledger.TodaysTotalSeconds()
	current, longest := eng.ledger.Streaks()
	target := settings.DailyTargetSeconds()

	fmt.Println("\n=== frictiond Status ===")
	fmt.Printf("Today's focus:   %s of %s goal\n",
		(time.Duration(total) * time.Second).String(),
		(time.Duration(target) * time.Second).String())
	if total >= target {
		fmt.Println("Daily goal:      MET (breathing gate is skippable)")
	} else {
		fmt.Println("Daily goal:      not yet met")
	}
	fmt.Printf("Sessions today:  %d\n", eng.ledger.SessionCount())
	fmt.Printf("Current streak:  %d day(s)\n", current)
	fmt.Printf("Longest streak:  %d day(s)\n", longest)
	if settings.QuizModeEnabled {
		fmt.Println("Gate mode:       flashcard quiz")
	} else {
		fmt.Printf("Gate mode:       breathing pause (%ds)\n", settings.DelaySeconds)
	}
	fmt.Println("========================")
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine(false)
	if err != nil {
		return err
	}
	defer func() { _ = eng.logger.Sync() }()

	if resetAll {
		if err := eng.ledger.ResetAll(); err != nil {
			return err
		}
		fmt.Println("Ledger wiped.")
		return nil
	}

	if err := eng.ledger.ResetToday(); err != nil {
		return err
	}
	fmt.Println("Today's sessions cleared.")
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine(false)
	if err != nil {
		return err
	}
	defer func() { _ = eng.logger.Sync() }()

	settings, _ := eng.settings.Load()
	fmt.Printf("delay-seconds:   %d\n", settings.DelaySeconds)
	fmt.Printf("quiz-mode:       %t\n", settings.QuizModeEnabled)
	fmt.Printf("target-minutes:  %d\n", settings.DailyFocusTargetMinutes)
	fmt.Printf("bypass-limit:    %d (reserved)\n", settings.DailyBypassLimit)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine(false)
	if err != nil {
		return err
	}
	defer func() { _ = eng.logger.Sync() }()

	settings, _ := eng.settings.Load()

	if setDelaySecs > 0 {
		settings.DelaySeconds = setDelaySecs
	}
	if setTargetMins > 0 {
		settings.DailyFocusTargetMinutes = setTargetMins
	}
	if setBypassLimit >= 0 {
		settings.DailyBypassLimit = setBypassLimit
	}
	if setQuizMode != "" {
		enabled, err := strconv.ParseBool(setQuizMode)
		if err != nil {
			return fmt.Errorf("--quiz-mode must be true or false, got %q", setQuizMode)
		}
		settings.QuizModeEnabled = enabled
	}

	if err := eng.settings.Save(settings); err != nil {
		return err
	}
	fmt.Println("Settings saved.")
	return runSettingsGet(cmd, args)
}

func runCardsList(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine(false)
	if err != nil {
		return err
	}
	defer func() { _ = eng.logger.Sync() }()

	cardStore, err := openCardStore(eng.cfg)
	if err != nil {
		return err
	}
	defer cardStore.Close()

	cards, err := cardStore.AllCards()
	if err != nil {
		return err
	}

	if len(cards) == 0 {
		fmt.Println("No flashcards yet. Add one with 'frictiond cards add'.")
		return nil
	}

	for _, card := range cards {
		marker := " "
		if card.QuizEligible {
			marker = "*"
		}
		fmt.Printf("%s [%s] Q: %s\n", marker, card.ID[:8], card.Question)
	}
	fmt.Println("\n* = quiz-eligible")
	return nil
}

func runCardsAdd(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine(false)
	if err != nil {
		return err
	}
	defer func() { _ = eng.logger.Sync() }()

	cardStore, err := openCardStore(eng.cfg)
	if err != nil {
		return err
	}
	defer cardStore.Close()

	card := domain.Card{
		ID:           uuid.NewString(),
		Question:     cardQuestion,
		Answer:       cardAnswer,
		QuizEligible: cardEligible,
	}
	if err := cardStore.AddCard(card); err != nil {
		return err
	}
	fmt.Printf("Added card %s\n", card.ID[:8])
	return nil
}

func runCardsFlag(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine(false)
	if err != nil {
		return err
	}
	defer func() { _ = eng.logger.Sync() }()

	cardStore, err := openCardStore(eng.cfg)
	if err != nil {
		return err
	}
	defer cardStore.Close()

	// Accept an ID prefix, matching the list output.
	cards, err := cardStore.AllCards()
	if err != nil {
		return err
	}
	fullID := ""
	for _, card := range cards {
		if card.ID == args[0] || (len(args[0]) >= 8 && len(card.ID) >= len(args[0]) && card.ID[:len(args[0])] == args[0]) {
			fullID = card.ID
			break
		}
	}
	if fullID == "" {
		return fmt.Errorf("no card matches %q", args[0])
	}

	if err := cardStore.SetQuizEligible(fullID, cardEligible); err != nil {
		return err
	}
	fmt.Printf("Card %s quiz-eligible: %t\n", fullID[:8], cardEligible)
	return nil
}

func runDaemon(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine(true)
	if err != nil {
		return err
	}
	defer func() { _ = eng.logger.Sync() }()

	if len(eng.cfg.FlaggedProcesses) == 0 {
		return errors.New("no flagged_processes configured; nothing to gate")
	}

	cardStore, err := openCardStore(eng.cfg)
	if err != nil {
		return err
	}
	defer cardStore.Close()

	provider := infra.NewProcessAppWatcher(eng.cfg.FlaggedProcesses)
	gater := ui.NewTerminalGater(eng.settings, cardStore, eng.clock, eng.logger)

	gkConfig := daemon.DefaultGatekeeperConfig()
	if eng.cfg.ScanIntervalSeconds > 0 {
		gkConfig.ScanInterval = time.Duration(eng.cfg.ScanIntervalSeconds) * time.Second
	}

	gatekeeper := daemon.NewGatekeeper(gkConfig, provider, eng.selector, gater, eng.logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := gatekeeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		info := map[string]string{
			"version":    Version,
			"commit":     Commit,
			"build_time": BuildTime,
		}
		data, _ := json.Marshal(info)
		fmt.Println(string(data))
		return
	}
	fmt.Printf("frictiond %s (commit %s, built %s)\n", Version, Commit, BuildTime)
}
