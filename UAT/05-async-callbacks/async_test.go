// Package async_test runs cases that wait on work in other goroutines.
package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/toejough/imprun"
)

// TestAsync_CaseAwaitsFuture runs a case that suspends on a Future until a
// wrapped asynchronous fetch completes.
func TestAsync_CaseAwaitsFuture(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fetchScore := imprun.WrapFunc(func(player string) int {
		time.Sleep(5 * time.Millisecond)

		return len(player)
	}, imprun.WithName("fetchScore"))

	runner := imprun.NewRunner()
	g.Expect(runner.Register("score arrives", func(ctx context.Context) error {
		score, err := imprun.Go(func() (int, error) { return fetchScore.Func()("Diego"), nil }).Await(ctx)

		return imprun.Assert(
			err,
			imprun.Expect(score).ToBe(5),
			imprun.Expect(fetchScore).ToHaveBeenCalledWith("Diego"),
		)
	})).To(Succeed())

	g.Expect(runner.Run(t.Context()).OK()).To(BeTrue())
}

// TestAsync_HungCaseTimesOut bounds a case that never finishes.
func TestAsync_HungCaseTimesOut(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	runner := imprun.NewRunner(imprun.WithTimeout(20 * time.Millisecond))
	g.Expect(runner.Register("never answers", func(ctx context.Context) error {
		<-ctx.Done()

		return ctx.Err()
	})).To(Succeed())
	g.Expect(runner.Register("still runs", func(context.Context) error { return nil })).To(Succeed())

	report := runner.Run(t.Context())

	g.Expect(report.Outcomes[0].Kind).To(Equal(imprun.FailureTimeout))
	g.Expect(errors.Is(report.Outcomes[0].Failure, imprun.ErrTimeout)).To(BeTrue())
	g.Expect(report.Outcomes[1].Status).To(Equal(imprun.StatusPassed))
}

// TestAsync_RejectedFuture reports a failed asynchronous result as the case's failure.
func TestAsync_RejectedFuture(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	errUnavailable := errors.New("score service unavailable")

	runner := imprun.NewRunner()
	g.Expect(runner.Register("score fails", func(ctx context.Context) error {
		_, err := imprun.Go(func() (int, error) { return 0, errUnavailable }).Await(ctx)

		return err
	})).To(Succeed())

	outcome := runner.Run(t.Context()).Outcomes[0]

	g.Expect(outcome.Failure).To(MatchError(errUnavailable))
	g.Expect(outcome.Kind).To(Equal(imprun.FailureRuntime))
}
