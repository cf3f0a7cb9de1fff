package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toejough/imprun"
	"github.com/toejough/imprun/cli"
)

func TestRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand("thumbwar", passingSuite)
	require.NotNil(t, cmd)
	assert.Equal(t, "thumbwar", cmd.Use)

	for _, name := range []string{"run", "last"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, "command %s should exist", name)
		assert.Equal(t, name, sub.Name())
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestRun_Passing(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, passingSuite, "run")
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ sum adds numbers\n✓ subtract subtracts numbers\n")
	assert.Contains(t, stdout, "Tests: 2 passed, 2 total")
}

func TestRun_Failing(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, failingSuite, "run")
	require.Error(t, err)

	assert.Equal(t, cli.ExitFailure, cli.GetExitCode(err))
	assert.Contains(t, stdout, "✕ sum is not subtract\n    [assertion] ToBe: expected 4, got 10\n")
	assert.Contains(t, stdout, "✓ sum adds numbers")
	assert.Contains(t, stdout, "Tests: 1 failed, 1 passed, 2 total")
}

func TestRun_JSON(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, failingSuite, "run", "--format", "json")
	require.Error(t, err)

	var doc struct {
		Meta struct {
			Failed int `json:"failed"`
			Total  int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, 1, doc.Meta.Failed)
	assert.Equal(t, 2, doc.Meta.Total)
}

func TestRun_InvalidFormat(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, passingSuite, "run", "--format", "xml")

	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))
}

func TestRun_Duplicates(t *testing.T) {
	t.Parallel()

	duplicated := func(runner *imprun.Runner, _ *imprun.Registry) error {
		for range 2 {
			if err := runner.Register("the thumbWar function", noop); err != nil {
				return err
			}
		}

		return nil
	}

	_, _, err := execute(t, duplicated, "run")
	require.ErrorIs(t, err, imprun.ErrDuplicateName)
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))

	stdout, _, err := execute(t, duplicated, "run", "--allow-duplicates")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Tests: 2 passed, 2 total")
}

func TestRun_DuplicatesAllowedByDefault(t *testing.T) {
	t.Parallel()

	duplicated := func(runner *imprun.Runner, _ *imprun.Registry) error {
		return errors.Join(
			runner.Register("the thumbWar function", noop),
			runner.Register("the thumbWar function", noop),
		)
	}

	args := []string{"run", "--env-file=", "--no-color"}

	assert.Equal(t, cli.ExitSuccess, cli.Execute(t.Context(), "suite", args, duplicated, cli.AllowDuplicates()))
	assert.Equal(t, cli.ExitCommandError,
		cli.Execute(t.Context(), "suite", append(args, "--allow-duplicates=false"), duplicated, cli.AllowDuplicates()))
}

func TestRun_Timeout(t *testing.T) {
	t.Parallel()

	hangs := func(runner *imprun.Runner, _ *imprun.Registry) error {
		return runner.Register("hangs", func(ctx context.Context) error {
			<-ctx.Done()

			return ctx.Err()
		})
	}

	stdout, _, err := execute(t, hangs, "run", "--timeout", "20ms")
	require.Error(t, err)
	assert.Contains(t, stdout, "[timeout] test timed out after 20ms")
}

func TestRun_SuiteRestoresSubstitutions(t *testing.T) {
	t.Parallel()

	winner := func(_, p2 string) string { return p2 }

	suite := func(runner *imprun.Runner, registry *imprun.Registry) error {
		return errors.Join(
			runner.Register("substitutes", func(context.Context) error {
				mock := imprun.WrapFunc(func(p1, _ string) string { return p1 })

				return imprun.Assert(
					imprun.SubstituteMock(registry, &winner, mock),
					imprun.Expect(winner("Diego", "Adolfo")).ToBe("Diego"),
				)
			}),
			runner.Register("restored", func(context.Context) error {
				return imprun.Expect(winner("Diego", "Adolfo")).ToBe("Adolfo")
			}),
		)
	}

	_, stderr, err := execute(t, suite, "run", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, stderr, "substitutions leaked")
}

func TestLast(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "last-run.json")

	_, _, err := execute(t, failingSuite, "run", "--output", path)
	require.Error(t, err)

	stdout, _, err := execute(t, failingSuite, "last", "--output", path, "--failures")
	require.NoError(t, err)

	assert.Contains(t, stdout, "✕ sum is not subtract\n    [assertion] ToBe: expected 4, got 10\n")
	assert.NotContains(t, stdout, "✓")
	assert.Contains(t, stdout, "Tests: 1 failed, 1 passed, 2 total")
}

func TestLast_NoReport(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, passingSuite, "last")

	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, cli.ExitSuccess, cli.GetExitCode(nil))
	assert.Equal(t, cli.ExitFailure, cli.GetExitCode(errors.New("plain")))
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(cli.NewExitError(cli.ExitCommandError, "bad")))
}

func TestExecute(t *testing.T) {
	t.Parallel()

	assert.Equal(t, cli.ExitSuccess, cli.Execute(t.Context(), "suite", []string{"run", "--env-file=", "--no-color"}, passingSuite))
	assert.Equal(t, cli.ExitFailure, cli.Execute(t.Context(), "suite", []string{"run", "--env-file=", "--no-color"}, failingSuite))
}

func execute(t *testing.T, suite cli.Suite, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := cli.NewRootCommand("suite", suite)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	args = append(args, "--env-file=")
	if len(args) > 0 && args[0] == "run" {
		args = append(args, "--no-color")
	}

	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())

	return stdout.String(), stderr.String(), err
}

func failingSuite(runner *imprun.Runner, _ *imprun.Registry) error {
	sum := func(a, b int) int { return a + b }

	return errors.Join(
		runner.Register("sum adds numbers", func(context.Context) error {
			return imprun.Expect(sum(3, 7)).ToBe(10)
		}),
		runner.Register("sum is not subtract", func(context.Context) error {
			return imprun.Expect(sum(3, 7)).ToBe(4)
		}),
	)
}

func noop(context.Context) error {
	return nil
}

func passingSuite(runner *imprun.Runner, _ *imprun.Registry) error {
	sum := func(a, b int) int { return a + b }
	subtract := func(a, b int) int { return a - b }

	return errors.Join(
		runner.Register("sum adds numbers", func(context.Context) error {
			return imprun.Expect(sum(3, 7)).ToBe(10)
		}),
		runner.Register("subtract subtracts numbers", func(context.Context) error {
			return imprun.Expect(subtract(7, 3)).ToBe(4)
		}),
	)
}
