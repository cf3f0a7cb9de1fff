package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toejough/imprun/internal/config"
	"github.com/toejough/imprun/report"
)

// LastOptions holds flags for the last command.
type LastOptions struct {
	*RootOptions
	Output       string
	FailuresOnly bool
}

// NewLastCommand creates the last command, which prints the report saved by the
// previous run.
func NewLastCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LastOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "last",
		Short: "Show the report saved by the previous run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showLast(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "report file (defaults to the configured output)")
	cmd.Flags().BoolVar(&opts.FailuresOnly, "failures", false, "list failed cases only")

	return cmd
}

func showLast(cmd *cobra.Command, opts *LastOptions) error {
	cfg, err := loadConfig(cmd, opts.RootOptions)
	if err != nil {
		return err
	}

	path := cfg.OutputPath
	if opts.Output != "" {
		path = opts.Output
	}

	if path == "" {
		return NewExitError(ExitCommandError, "no report file: pass --output or set output in the config")
	}

	doc, err := report.NewStore(path).Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "load report", err)
	}

	out := cmd.OutOrStdout()

	if cfg.Format == config.FormatJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(doc); err != nil {
			return WrapExitError(ExitCommandError, "write report", err)
		}

		return nil
	}

	for _, outcome := range doc.Outcomes {
		if outcome.Failure == "" {
			if !opts.FailuresOnly {
				fmt.Fprintf(out, "✓ %s\n", outcome.Name)
			}

			continue
		}

		fmt.Fprintf(out, "✕ %s\n    [%s] %s\n", outcome.Name, outcome.Kind, outcome.Failure)
	}

	fmt.Fprintf(out, "\nTests: %d failed, %d passed, %d total (run %s)\n",
		doc.Meta.Failed, doc.Meta.Passed, doc.Meta.Total, doc.Meta.ID)

	return nil
}
