package report_test

import (
	"bytes"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/sebdah/goldie/v2"

	"github.com/toejough/imprun/internal/core"
	"github.com/toejough/imprun/report"
)

func TestText_Render(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	NewWithT(t).Expect(report.NewText(&out, false).Render(sampleReport())).To(Succeed())

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "text_report", out.Bytes())
}

func TestText_AllPassed(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	passed := &core.Report{
		Duration: 2 * time.Millisecond,
		Outcomes: []core.Outcome{{Name: "sum adds numbers", Status: core.StatusPassed}},
	}

	NewWithT(t).Expect(report.NewText(&out, false).Render(passed)).To(Succeed())

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "text_all_passed", out.Bytes())
}

func TestText_Color(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var out bytes.Buffer

	text := report.NewText(&out, true)
	text.CaseStarted("sum adds numbers")
	text.CaseFinished(core.Outcome{Name: "sum adds numbers", Status: core.StatusPassed})

	g.Expect(out.String()).To(Equal("\x1b[32m✓\x1b[0m sum adds numbers\n"))
	g.Expect(text.Err()).NotTo(HaveOccurred())
}

func TestText_WriteError(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	text := report.NewText(failingWriter{}, false)

	g.Expect(text.Render(sampleReport())).To(MatchError(errWrite))
	g.Expect(text.Err()).To(MatchError(errWrite))
}

func sampleReport() *core.Report {
	return &core.Report{
		ID:       "run-1",
		Started:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Duration: 1500 * time.Millisecond,
		Outcomes: []core.Outcome{
			{Name: "sum adds numbers", Status: core.StatusPassed, Duration: time.Millisecond},
			{
				Name:    "sum is not subtract",
				Status:  core.StatusFailed,
				Kind:    core.FailureAssertion,
				Failure: core.Expect(10).ToBe(4),
			},
			{
				Name:   "winner",
				Status: core.StatusFailed,
				Kind:   core.FailureAssertion,
				Failure: &core.AssertionFailure{
					Matcher:  "ToEqual",
					Actual:   []string{"Diego", "Adolfo"},
					Expected: []string{"Diego", "Jose"},
					Message:  "winners differ",
					Diff: "--- expected\n+++ actual\n@@ -1,4 +1,4 @@\n [\n   \"Diego\",\n" +
						"-  \"Jose\",\n+  \"Adolfo\",\n ]\n",
				},
			},
			{
				Name:    "panics",
				Status:  core.StatusFailed,
				Kind:    core.FailureRuntime,
				Failure: &core.PanicError{Value: "boom"},
			},
		},
	}
}
