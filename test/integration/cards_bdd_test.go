//go:build integration

package integration

import (
	"fmt"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/frictiond/internal/delay"
	"github.com/eliteGoblin/frictiond/internal/domain"
	"github.com/eliteGoblin/frictiond/internal/infra"
)

var _ = Describe("Encrypted card store", func() {
	var (
		tmpDir string
		store  *infra.EncryptedCardStore
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "frictiond-cards-*")
		Expect(err).NotTo(HaveOccurred())

		key, err := infra.EnsureKey(infra.NewFileKeyProvider(tmpDir))
		Expect(err).NotTo(HaveOccurred())

		store, err = infra.NewEncryptedCardStore(tmpDir, key)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		store.Close()
		os.RemoveAll(tmpDir)
	})

	Describe("the quiz draw pool", func() {
		Context("with a mix of eligible and ineligible cards", func() {
			It("should only expose flagged cards to the quiz", func() {
				for i := 0; i < 6; i++ {
					Expect(store.AddCard(domain.Card{
						ID:           fmt.Sprintf("eligible-%d", i),
						Question:     "q",
						Answer:       "a",
						QuizEligible: true,
					})).To(Succeed())
				}
				Expect(store.AddCard(domain.Card{
					ID:       "ineligible-1",
					Question: "q",
					Answer:   "a",
				})).To(Succeed())

				pool, err := store.QuizEligibleCards()
				Expect(err).NotTo(HaveOccurred())
				Expect(pool).To(HaveLen(6))
				for _, card := range pool {
					Expect(card.QuizEligible).To(BeTrue())
				}

				machine, err := delay.NewQuizMachine(pool, infra.NewSystemClock(), zap.NewNop())
				Expect(err).NotTo(HaveOccurred())
				Expect(machine.Snapshot().State).To(Equal(delay.QuizInProgress))
			})
		})

		Context("with too few eligible cards", func() {
			It("should fail quiz construction with the insufficient-cards error", func() {
				for i := 0; i < 4; i++ {
					Expect(store.AddCard(domain.Card{
						ID:           fmt.Sprintf("card-%d", i),
						Question:     "q",
						Answer:       "a",
						QuizEligible: true,
					})).To(Succeed())
				}

				pool, err := store.QuizEligibleCards()
				Expect(err).NotTo(HaveOccurred())

				_, err = delay.NewQuizMachine(pool, infra.NewSystemClock(), zap.NewNop())
				Expect(err).To(MatchError(domain.ErrInsufficientCards))
			})
		})

		Context("when eligibility is toggled", func() {
			It("should move cards in and out of the pool", func() {
				Expect(store.AddCard(domain.Card{
					ID: "c1", Question: "q", Answer: "a", QuizEligible: true,
				})).To(Succeed())

				Expect(store.SetQuizEligible("c1", false)).To(Succeed())
				pool, err := store.QuizEligibleCards()
				Expect(err).NotTo(HaveOccurred())
				Expect(pool).To(BeEmpty())

				Expect(store.SetQuizEligible("c1", true)).To(Succeed())
				pool, err = store.QuizEligibleCards()
				Expect(err).NotTo(HaveOccurred())
				Expect(pool).To(HaveLen(1))
			})
		})
	})

	Describe("reopening the database", func() {
		It("should read back cards with the persisted key", func() {
			Expect(store.AddCard(domain.Card{
				ID: "persist-1", Question: "2^10?", Answer: "1024", QuizEligible: true,
			})).To(Succeed())
			Expect(store.Close()).To(Succeed())

			key, err := infra.NewFileKeyProvider(tmpDir).GetKey()
			Expect(err).NotTo(HaveOccurred())

			reopened, err := infra.NewEncryptedCardStore(tmpDir, key)
			Expect(err).NotTo(HaveOccurred())
			store = reopened

			cards, err := store.AllCards()
			Expect(err).NotTo(HaveOccurred())
			Expect(cards).To(HaveLen(1))
			Expect(cards[0].Answer).To(Equal("1024"))
		})
	})
})
