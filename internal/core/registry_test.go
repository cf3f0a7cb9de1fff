package core_test

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"pgregory.net/rapid"

	"github.com/toejough/imprun/internal/core"
)

func TestRegistry_SubstituteAndRestore(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	reg := core.NewRegistry()
	original := func(p1, p2 string) string { return p2 }
	getWinner := original

	mock := core.WrapFunc(func(p1, _ string) string { return p1 })

	g.Expect(core.SubstituteMock(reg, &getWinner, mock)).To(Succeed())
	g.Expect(getWinner("Diego", "Adolfo")).To(Equal("Diego"))
	g.Expect(reg.IsSubstituted(&getWinner)).To(BeTrue())
	g.Expect(reg.Live()).To(Equal(1))

	g.Expect(reg.Restore(&getWinner)).To(Succeed())
	g.Expect(getWinner("Diego", "Adolfo")).To(Equal("Adolfo"))
	g.Expect(core.Same(getWinner, original)).To(BeTrue(), "restore writes back the identical original")
	g.Expect(reg.Live()).To(BeZero())
}

// TestRegistry_Substitute_PointerHolder verifies the holder, not the value, is the key.
func TestRegistry_Substitute_PointerHolder(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	type scores struct{ p1, p2 int }

	reg := core.NewRegistry()
	first := &scores{1, 2}
	holder := first

	g.Expect(core.Substitute(reg, &holder, &scores{9, 9})).To(Succeed())
	g.Expect(holder.p1).To(Equal(9))

	g.Expect(reg.Restore(&holder)).To(Succeed())
	g.Expect(holder).To(BeIdenticalTo(first))
}

func TestRegistry_Substitute_Twice(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	reg := core.NewRegistry()
	value := 1

	g.Expect(core.Substitute(reg, &value, 2)).To(Succeed())

	err := core.Substitute(reg, &value, 3)
	g.Expect(errors.Is(err, core.ErrAlreadySubstituted)).To(BeTrue())
	g.Expect(core.Classify(err)).To(Equal(core.FailureUsage))
	g.Expect(value).To(Equal(2), "a rejected substitution leaves the live one in place")

	g.Expect(reg.Restore(&value)).To(Succeed())
	g.Expect(value).To(Equal(1), "the true original survives")
}

func TestRegistry_Restore_NotSubstituted(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	reg := core.NewRegistry()
	value := "live"

	g.Expect(reg.Restore(&value)).To(MatchError(core.ErrNotSubstituted))

	g.Expect(core.Substitute(reg, &value, "fake")).To(Succeed())
	g.Expect(reg.Restore(&value)).To(Succeed())
	g.Expect(reg.Restore(&value)).To(MatchError(core.ErrNotSubstituted), "second restore is a usage error")
	g.Expect(value).To(Equal("live"))
}

func TestRegistry_NilTarget(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	reg := core.NewRegistry()

	g.Expect(core.Substitute[int](reg, nil, 1)).To(MatchError(core.ErrNilTarget))
	g.Expect(reg.Restore(nil)).To(MatchError(core.ErrNilTarget))
}

func TestRegistry_RestoreAll(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	reg := core.NewRegistry()
	a, b := "a", "b"

	g.Expect(core.Substitute(reg, &a, "fake-a")).To(Succeed())
	g.Expect(core.Substitute(reg, &b, "fake-b")).To(Succeed())

	reg.RestoreAll()

	g.Expect(a).To(Equal("a"))
	g.Expect(b).To(Equal("b"))
	g.Expect(reg.Live()).To(BeZero())
	g.Expect(reg.IsSubstituted(&a)).To(BeFalse())

	reg.RestoreAll()
	g.Expect(reg.Live()).To(BeZero(), "restoring nothing is a no-op")
}

func TestRegistry_ForTest(t *testing.T) {
	t.Parallel()

	value := "live"

	t.Run("substitutes", func(t *testing.T) {
		g := NewWithT(t)

		reg := core.ForTest(t)
		g.Expect(core.ForTest(t)).To(BeIdenticalTo(reg))
		g.Expect(core.Substitute(reg, &value, "fake")).To(Succeed())
		g.Expect(value).To(Equal("fake"))
	})

	NewWithT(t).Expect(value).To(Equal("live"), "cleanup restored the substitution")
}

func TestRegistry_Default(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(core.Default()).To(BeIdenticalTo(core.Default()))
}

// TestRegistry_RestoreAllReturnsOriginals_Rapid proves any mix of substitutions and
// single restores ends, after RestoreAll, with every holder at its original value.
func TestRegistry_RestoreAllReturnsOriginals_Rapid(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		reg := core.NewRegistry()
		originals := rapid.SliceOfN(rapid.Int(), 1, 8).Draw(rt, "originals")
		holders := make([]int, len(originals))
		copy(holders, originals)

		steps := rapid.SliceOf(rapid.IntRange(0, len(holders)-1)).Draw(rt, "steps")
		for _, i := range steps {
			if reg.IsSubstituted(&holders[i]) {
				if err := reg.Restore(&holders[i]); err != nil {
					rt.Fatalf("restore %d: %v", i, err)
				}

				continue
			}

			if err := core.Substitute(reg, &holders[i], rapid.Int().Draw(rt, "replacement")); err != nil {
				rt.Fatalf("substitute %d: %v", i, err)
			}
		}

		reg.RestoreAll()

		for i := range holders {
			if holders[i] != originals[i] {
				rt.Fatalf("holder %d = %d, want %d", i, holders[i], originals[i])
			}
		}

		if reg.Live() != 0 {
			rt.Fatalf("live = %d after RestoreAll", reg.Live())
		}
	})
}
