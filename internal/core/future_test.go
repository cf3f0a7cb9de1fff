package core_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/imprun/internal/core"
)

func TestFuture_Await(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	future := core.Go(func() (int, error) { return 42, nil })

	got, err := future.Await(t.Context())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal(42))
	g.Expect(future.Done()).To(BeClosed())
}

func TestFuture_AwaitError(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	errFetch := errors.New("fetch failed")

	_, err := core.Go(func() (string, error) { return "", errFetch }).Await(t.Context())
	g.Expect(err).To(MatchError(errFetch))
}

func TestFuture_AwaitPanic(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := core.Go(func() (int, error) { panic("boom") }).Await(t.Context())

	var panicErr *core.PanicError
	g.Expect(errors.As(err, &panicErr)).To(BeTrue())
	g.Expect(panicErr.Value).To(Equal("boom"))
	g.Expect(panicErr.Stack).NotTo(BeEmpty())
}

func TestFuture_AwaitCanceled(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	release := make(chan struct{})
	defer close(release)

	future := core.Go(func() (int, error) {
		<-release

		return 1, nil
	})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	got, err := future.Await(ctx)
	g.Expect(err).To(MatchError(context.Canceled))
	g.Expect(got).To(BeZero())
}

func TestFuture_Resolved(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	future := core.Resolved("Diego", nil)

	g.Expect(future.Done()).To(BeClosed())
	g.Expect(future.Await(t.Context())).To(Equal("Diego"))
}
