//go:build integration

package integration

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/frictiond/internal/domain"
	"github.com/eliteGoblin/frictiond/internal/infra"
	"github.com/eliteGoblin/frictiond/internal/usecase"
)

var _ = Describe("Focus Ledger persistence", func() {
	var (
		tmpDir   string
		settings *infra.FileSettingsStore
		clock    domain.Clock
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "frictiond-integration-*")
		Expect(err).NotTo(HaveOccurred())

		settings = infra.NewFileSettingsStore(tmpDir, zap.NewNop())
		Expect(settings.Save(domain.Settings{
			DelaySeconds:            30,
			DailyFocusTargetMinutes: 1,
		})).To(Succeed())

		clock = infra.NewSystemClock()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("recording and reloading", func() {
		Context("when sessions are recorded and the process restarts", func() {
			It("should restore totals, sessions and streaks from disk", func() {
				store := infra.NewFileLedgerStore(tmpDir, zap.NewNop())
				ledger := usecase.NewLedger(store, settings, clock, zap.NewNop())

				_, err := ledger.RecordSession(45)
				Expect(err).NotTo(HaveOccurred())
				_, err = ledger.RecordSession(30)
				Expect(err).NotTo(HaveOccurred())

				Expect(ledger.TodaysTotalSeconds()).To(Equal(75))
				current, longest := ledger.Streaks()
				Expect(current).To(Equal(1))
				Expect(longest).To(Equal(1))

				// Fresh store and service over the same directory.
				reloaded := usecase.NewLedger(
					infra.NewFileLedgerStore(tmpDir, zap.NewNop()),
					settings, clock, zap.NewNop())

				Expect(reloaded.TodaysTotalSeconds()).To(Equal(75))
				Expect(reloaded.SessionCount()).To(Equal(2))
				current, longest = reloaded.Streaks()
				Expect(current).To(Equal(1))
				Expect(longest).To(Equal(1))
			})
		})

		Context("when today is reset", func() {
			It("should persist the cleared state", func() {
				store := infra.NewFileLedgerStore(tmpDir, zap.NewNop())
				ledger := usecase.NewLedger(store, settings, clock, zap.NewNop())

				_, err := ledger.RecordSession(120)
				Expect(err).NotTo(HaveOccurred())
				Expect(ledger.ResetToday()).To(Succeed())

				reloaded := usecase.NewLedger(
					infra.NewFileLedgerStore(tmpDir, zap.NewNop()),
					settings, clock, zap.NewNop())
				Expect(reloaded.TodaysTotalSeconds()).To(Equal(0))
			})
		})
	})

	Describe("settings round trip", func() {
		It("should survive reload and drive the selector", func() {
			loaded, err := settings.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.DailyFocusTargetMinutes).To(Equal(1))

			store := infra.NewFileLedgerStore(tmpDir, zap.NewNop())
			ledger := usecase.NewLedger(store, settings, clock, zap.NewNop())
			selector := usecase.NewSelector(settings, ledger, zap.NewNop())

			decision := selector.Select()
			Expect(decision.Mode).To(Equal(domain.ModeBreathing))
			Expect(decision.BypassEligible).To(BeFalse())

			_, err = ledger.RecordSession(60)
			Expect(err).NotTo(HaveOccurred())

			decision = selector.Select()
			Expect(decision.BypassEligible).To(BeTrue())

			loaded.QuizModeEnabled = true
			Expect(settings.Save(loaded)).To(Succeed())
			decision = selector.Select()
			Expect(decision.Mode).To(Equal(domain.ModeQuiz))
		})
	})

	Describe("ledger document", func() {
		It("should be written atomically with no stray temp files", func() {
			store := infra.NewFileLedgerStore(tmpDir, zap.NewNop())
			ledger := usecase.NewLedger(store, settings, clock, zap.NewNop())

			for i := 0; i < 10; i++ {
				_, err := ledger.RecordSession(10)
				Expect(err).NotTo(HaveOccurred())
			}

			entries, err := os.ReadDir(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			for _, entry := range entries {
				Expect(entry.Name()).NotTo(ContainSubstring(".tmp"))
			}

			info, err := os.Stat(store.Path())
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Size()).To(BeNumerically(">", 0))
			Expect(info.ModTime()).To(BeTemporally("~", time.Now(), time.Minute))
		})
	})
})
