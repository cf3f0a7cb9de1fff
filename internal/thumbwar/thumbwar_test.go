package thumbwar_test

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/imprun"
	"github.com/toejough/imprun/internal/thumbwar"
)

func TestSuite_PassesWithDuplicatesAllowed(t *testing.T) {
	g := NewWithT(t)

	original := thumbwar.GetWinner
	registry := imprun.NewRegistry()
	runner := imprun.NewRunner(
		imprun.WithDuplicates(imprun.AllowDuplicates),
		imprun.WithRegistry(registry),
	)

	g.Expect(thumbwar.Suite(runner, registry)).To(Succeed())

	report := runner.Run(t.Context())

	for _, outcome := range report.Outcomes {
		g.Expect(outcome.Failure).NotTo(HaveOccurred(), outcome.Name)
	}

	g.Expect(report.Outcomes).To(HaveLen(5))
	g.Expect(imprun.Expect(thumbwar.GetWinner).ToBe(original)).To(Succeed(), "every substitution was restored")
}

func TestSuite_RejectsDuplicatesByDefault(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	runner := imprun.NewRunner()

	g.Expect(thumbwar.Suite(runner, imprun.NewRegistry())).To(MatchError(imprun.ErrDuplicateName))
}

// TestThumbWar_TiesDoNotCount scripts the rounds: tie, player 2, player 1, player 2.
func TestThumbWar_TiesDoNotCount(t *testing.T) {
	g := NewWithT(t)

	rounds := []string{"", "Adolfo", "Diego", "Adolfo"}
	getWinner := imprun.WrapFunc(func(string, string) string {
		winner := rounds[0]
		rounds = rounds[1:]

		return winner
	})

	g.Expect(imprun.SubstituteMock(imprun.ForTest(t), &thumbwar.GetWinner, getWinner)).To(Succeed())

	g.Expect(thumbwar.ThumbWar("Diego", "Adolfo")).To(Equal("Adolfo"))
	g.Expect(getWinner.CallCount()).To(Equal(4))
}

func TestArithmetic(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(thumbwar.Sum(3, 7)).To(Equal(10))
	g.Expect(thumbwar.Subtract(7, 3)).To(Equal(4))
}
