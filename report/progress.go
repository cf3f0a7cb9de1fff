package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/toejough/imprun/internal/core"
)

// Observers fans one runner's notifications out to several observers, in order.
type Observers []core.Observer

// CaseFinished notifies every observer.
func (o Observers) CaseFinished(outcome core.Outcome) {
	for _, observer := range o {
		observer.CaseFinished(outcome)
	}
}

// CaseStarted notifies every observer.
func (o Observers) CaseStarted(name string) {
	for _, observer := range o {
		observer.CaseStarted(name)
	}
}

// Progress draws a bar that advances as cases finish, with running pass/fail counts.
type Progress struct {
	bar    *progressbar.ProgressBar
	passed int
	failed int
}

// NewProgress creates a progress bar for total cases, drawn on out.
func NewProgress(out io.Writer, total int) *Progress {
	progress := &Progress{}
	progress.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(progress.description()),
		progressbar.OptionSetWidth(barWidth),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(out),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return progress
}

// CaseFinished advances the bar and updates the counts.
func (p *Progress) CaseFinished(outcome core.Outcome) {
	if outcome.Status == core.StatusPassed {
		p.passed++
	} else {
		p.failed++
	}

	p.bar.Describe(p.description())
	_ = p.bar.Add(1)
}

// CaseStarted does nothing; the bar only moves on outcomes.
func (p *Progress) CaseStarted(string) {}

// Finish completes the bar.
func (p *Progress) Finish() error {
	return p.bar.Finish()
}

const barWidth = 40

func (p *Progress) description() string {
	return color.CyanString("Running: ") +
		color.GreenString("[passed: %d", p.passed) +
		" | " +
		color.RedString("failed: %d]", p.failed)
}
