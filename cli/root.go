// Package cli builds the command line for a program that runs an imprun suite:
// a run command that executes the suite and a last command that shows the
// previous run's saved report.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/toejough/imprun"
	"github.com/toejough/imprun/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	EnvFile    string

	allowDuplicates bool
}

// Option configures the command line built for a suite.
type Option func(*RootOptions)

// AllowDuplicates makes duplicate case names the default, for suites that
// register several cases under one name. --allow-duplicates=false still rejects them.
func AllowDuplicates() Option {
	return func(opts *RootOptions) {
		opts.allowDuplicates = true
	}
}

// Suite registers its cases on runner. Substitutions made through registry are
// restored after every case.
type Suite func(runner *imprun.Runner, registry *imprun.Registry) error

// ValidFormats defines the allowed output formats.
//
//nolint:gochecknoglobals // read-only list shared by flag validation and help text
var ValidFormats = []string{config.FormatText, config.FormatJSON}

// Execute runs the command line against suite with args and returns the exit
// code. Errors are printed to stderr.
func Execute(ctx context.Context, name string, args []string, suite Suite, options ...Option) int {
	cmd := NewRootCommand(name, suite, options...)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		printError(cmd.ErrOrStderr(), err)
	}

	return GetExitCode(err)
}

// NewRootCommand creates the root command for a suite binary called name.
func NewRootCommand(name string, suite Suite, options ...Option) *cobra.Command {
	opts := &RootOptions{}

	for _, option := range options {
		option(opts)
	}

	cmd := &cobra.Command{
		Use:   name,
		Short: name + " - run an imprun test suite",
		Long: `Run a registered imprun suite: every case in registration order, one at a time,
with each failure isolated from the rest of the run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("format") && !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log case progress to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.DefaultFormat, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "",
		"YAML config file (default "+config.DefaultConfigFile+" if present)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", config.DefaultEnvFile, ".env file with IMPRUN_* settings")

	cmd.AddCommand(NewRunCommand(opts, suite))
	cmd.AddCommand(NewLastCommand(opts))

	return cmd
}

// loadConfig reads the config and lets explicitly set root flags override it.
func loadConfig(cmd *cobra.Command, opts *RootOptions) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigFile); err == nil {
			path = config.DefaultConfigFile
		}
	}

	cfg, err := config.Load(path, config.WithEnvFile(opts.EnvFile))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	if cmd.Flags().Changed("format") {
		cfg.Format = opts.Format
	}

	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = opts.Verbose
	}

	return cfg, nil
}

func printError(w io.Writer, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code == ExitFailure {
		fmt.Fprintln(w, exitErr.Error())

		return
	}

	fmt.Fprintln(w, "Error:", err)
}
