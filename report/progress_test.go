package report_test

import (
	"bytes"
	"context"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/imprun/internal/core"
	"github.com/toejough/imprun/report"
)

func TestProgress(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var out bytes.Buffer

	progress := report.NewProgress(&out, 2)
	progress.CaseStarted("first")
	progress.CaseFinished(core.Outcome{Name: "first", Status: core.StatusPassed})
	progress.CaseStarted("second")
	progress.CaseFinished(core.Outcome{Name: "second", Status: core.StatusFailed})

	g.Expect(progress.Finish()).To(Succeed())
	g.Expect(out.String()).To(ContainSubstring("passed: 1"))
	g.Expect(out.String()).To(ContainSubstring("failed: 1"))
}

// TestObservers_FanOut verifies every observer sees every notification, in order.
func TestObservers_FanOut(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var first, second bytes.Buffer

	runner := core.NewRunner(core.WithObserver(report.Observers{
		report.NewText(&first, false),
		report.NewText(&second, false),
	}))
	g.Expect(runner.Register("passes", func(context.Context) error { return nil })).To(Succeed())

	runner.Run(t.Context())

	g.Expect(first.String()).To(Equal("✓ passes\n"))
	g.Expect(second.String()).To(Equal(first.String()))
}
