// Package report renders run reports: ✓/✕ text lines for people, a JSON document
// for tools, and a store that keeps the last run on disk.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/toejough/imprun/internal/core"
)

// Text writes one ✓/✕ line per case, with failure detail indented under failing
// cases. It is a core.Observer, so lines can stream while the run is in progress.
type Text struct {
	out   io.Writer
	pass  *color.Color
	fail  *color.Color
	faint *color.Color
	err   error
}

// NewText creates a text renderer. useColor forces color on or off regardless of
// whether out is a terminal.
func NewText(out io.Writer, useColor bool) *Text {
	text := &Text{
		out:   out,
		pass:  color.New(color.FgGreen),
		fail:  color.New(color.FgRed),
		faint: color.New(color.Faint),
	}

	for _, c := range []*color.Color{text.pass, text.fail, text.faint} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return text
}

// CaseFinished writes the outcome's line.
func (t *Text) CaseFinished(outcome core.Outcome) {
	t.writeOutcome(outcome)
}

// CaseStarted does nothing: a line is written once its outcome is known.
func (t *Text) CaseStarted(string) {}

// Err returns the first write error, if any.
func (t *Text) Err() error {
	return t.err
}

// Render writes every outcome followed by the summary.
func (t *Text) Render(report *core.Report) error {
	for _, outcome := range report.Outcomes {
		t.writeOutcome(outcome)
	}

	return t.Summary(report)
}

// Summary writes the totals line and the run time.
func (t *Text) Summary(report *core.Report) error {
	counts := make([]string, 0, 3) //nolint:mnd // failed, passed, total

	if failed := report.Failed(); failed > 0 {
		counts = append(counts, t.fail.Sprintf("%d failed", failed))
	}

	if passed := report.Passed(); passed > 0 {
		counts = append(counts, t.pass.Sprintf("%d passed", passed))
	}

	counts = append(counts, fmt.Sprintf("%d total", len(report.Outcomes)))

	t.printf("\nTests: %s\n", strings.Join(counts, ", "))
	t.printf("Time:  %s\n", report.Duration)

	return t.err
}

func (t *Text) printf(format string, args ...any) {
	if t.err != nil {
		return
	}

	_, t.err = fmt.Fprintf(t.out, format, args...)
}

func (t *Text) writeOutcome(outcome core.Outcome) {
	if outcome.Status == core.StatusPassed {
		t.printf("%s %s\n", t.pass.Sprint("✓"), outcome.Name)

		return
	}

	t.printf("%s %s\n", t.fail.Sprint("✕"), outcome.Name)

	if outcome.Failure == nil {
		return
	}

	t.printf("    %s %s\n", t.faint.Sprintf("[%s]", outcome.Kind), outcome.Failure)

	var failure *core.AssertionFailure
	if !errors.As(outcome.Failure, &failure) || failure.Diff == "" {
		return
	}

	for line := range strings.SplitSeq(strings.TrimRight(failure.Diff, "\n"), "\n") {
		t.printf("    %s\n", t.diffLine(line))
	}
}

func (t *Text) diffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "@@"):
		return t.faint.Sprint(line)
	case strings.HasPrefix(line, "-"):
		return t.pass.Sprint(line)
	case strings.HasPrefix(line, "+"):
		return t.fail.Sprint(line)
	default:
		return line
	}
}
