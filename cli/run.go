package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/toejough/imprun"
	"github.com/toejough/imprun/internal/config"
	"github.com/toejough/imprun/report"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Timeout         time.Duration
	AllowDuplicates bool
	Output          string
	NoColor         bool
	Progress        bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions, suite Suite) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the suite",
		Long: `Run every registered case in registration order and report the outcomes.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed
  2 - Command error (bad flags, unreadable config, suite setup error)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSuite(cmd, opts, suite)
		},
	}

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", config.DefaultTimeout, "per-case time limit (0 for none)")
	cmd.Flags().BoolVar(&opts.AllowDuplicates, "allow-duplicates", rootOpts.allowDuplicates,
		"allow two cases with the same name")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "save the report as JSON to this file")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&opts.Progress, "progress", false, "draw a progress bar on stderr")

	return cmd
}

func runSuite(cmd *cobra.Command, opts *RunOptions, suite Suite) error {
	cfg, err := loadConfig(cmd, opts.RootOptions)
	if err != nil {
		return err
	}

	opts.apply(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid settings", err)
	}

	out := cmd.OutOrStdout()
	registry := imprun.NewRegistry()

	var observers report.Observers

	text := report.NewText(out, cfg.Color && !color.NoColor)
	if cfg.Format == config.FormatText {
		observers = append(observers, text)
	}

	duplicates := imprun.RejectDuplicates
	if cfg.AllowDuplicates {
		duplicates = imprun.AllowDuplicates
	}

	runner := imprun.NewRunner(
		imprun.WithTimeout(cfg.Timeout),
		imprun.WithDuplicates(duplicates),
		imprun.WithRegistry(registry),
		imprun.WithLogger(newLogger(cmd.ErrOrStderr(), cfg.Verbose)),
		imprun.WithObserver(&observers),
	)

	if err := suite(runner, registry); err != nil {
		return WrapExitError(ExitCommandError, "register suite", err)
	}

	var progress *report.Progress
	if opts.Progress {
		progress = report.NewProgress(cmd.ErrOrStderr(), runner.Len())
		observers = append(observers, progress)
	}

	result := runner.Run(cmd.Context())

	if progress != nil {
		_ = progress.Finish()
	}

	if err := writeReport(out, cfg.Format, text, result); err != nil {
		return WrapExitError(ExitCommandError, "write report", err)
	}

	if cfg.OutputPath != "" {
		if err := report.NewStore(cfg.OutputPath).Save(result); err != nil {
			return WrapExitError(ExitCommandError, "save report", err)
		}
	}

	if !result.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d test(s) failed", result.Failed()))
	}

	return nil
}

// apply lets explicitly set run flags override the loaded config.
func (o *RunOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("timeout") {
		cfg.Timeout = o.Timeout
	}

	if flags.Changed("allow-duplicates") || o.allowDuplicates {
		cfg.AllowDuplicates = o.AllowDuplicates
	}

	if flags.Changed("output") {
		cfg.OutputPath = o.Output
	}

	if o.NoColor {
		cfg.Color = false
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func writeReport(w io.Writer, format string, text *report.Text, result *imprun.Report) error {
	if format == config.FormatJSON {
		return report.WriteJSON(w, result)
	}

	return text.Summary(result)
}
