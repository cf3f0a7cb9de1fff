package core

import (
	"fmt"
)

// Expectation binds an actual value to the matchers. Every matcher returns nil on
// success and an *AssertionFailure otherwise.
type Expectation struct {
	actual any
	negate bool
}

// Expect returns the matchers bound to actual.
func Expect(actual any) *Expectation {
	return &Expectation{actual: actual}
}

// Assert returns the first non-nil check, so several matchers can guard one return.
func Assert(checks ...error) error {
	for _, err := range checks {
		if err != nil {
			return err
		}
	}

	return nil
}

// Not returns an expectation whose matchers pass exactly when the original ones fail.
func (e *Expectation) Not() *Expectation {
	return &Expectation{actual: e.actual, negate: !e.negate}
}

// ToBe checks identity: == for comparable values, reference identity otherwise.
func (e *Expectation) ToBe(expected any) error {
	return e.verdict(Same(e.actual, expected), func() *AssertionFailure {
		return &AssertionFailure{
			Matcher:  "ToBe",
			Actual:   e.actual,
			Expected: expected,
		}
	})
}

// ToEqual checks structural equality.
func (e *Expectation) ToEqual(expected any) error {
	return e.verdict(Equal(e.actual, expected), func() *AssertionFailure {
		return &AssertionFailure{
			Matcher:  "ToEqual",
			Actual:   e.actual,
			Expected: expected,
			Diff:     AssertionDiff(e.actual, expected),
		}
	})
}

// ToHaveBeenCalled checks that the mock was invoked at least once.
func (e *Expectation) ToHaveBeenCalled() error {
	const matcher = "ToHaveBeenCalled"

	recorder, err := e.recorder(matcher)
	if err != nil {
		return err
	}

	count := recorder.CallCount()

	return e.verdict(count > 0, func() *AssertionFailure {
		return &AssertionFailure{
			Matcher: matcher,
			Actual:  count,
			Message: fmt.Sprintf("expected %s to have been called, but it was not", e.name()),
		}
	})
}

// ToHaveBeenCalledTimes checks the mock's call count.
func (e *Expectation) ToHaveBeenCalledTimes(times int) error {
	const matcher = "ToHaveBeenCalledTimes"

	recorder, err := e.recorder(matcher)
	if err != nil {
		return err
	}

	count := recorder.CallCount()

	return e.verdict(count == times, func() *AssertionFailure {
		return &AssertionFailure{
			Matcher:  matcher,
			Actual:   count,
			Expected: times,
			Message:  fmt.Sprintf("expected %s to have been called %d times, got %d", e.name(), times, count),
		}
	})
}

// ToHaveBeenCalledWith checks that at least one recorded call has exactly args.
// Matchers may stand in for any argument.
func (e *Expectation) ToHaveBeenCalledWith(args ...any) error {
	const matcher = "ToHaveBeenCalledWith"

	recorder, err := e.recorder(matcher)
	if err != nil {
		return err
	}

	calls := recorder.AllCallArgs()
	found := false

	for _, call := range calls {
		if Equal(call, args) {
			found = true

			break
		}
	}

	return e.verdict(found, func() *AssertionFailure {
		return &AssertionFailure{
			Matcher:  matcher,
			Actual:   calls,
			Expected: args,
			Message: fmt.Sprintf("expected %s to have been called with %s; recorded calls: %s",
				e.name(), Describe(args), Describe(calls)),
		}
	})
}

// ToHaveBeenLastCalledWith checks the most recent call's arguments.
func (e *Expectation) ToHaveBeenLastCalledWith(args ...any) error {
	recorder, err := e.recorder("ToHaveBeenLastCalledWith")
	if err != nil {
		return err
	}

	return e.nthCalledWith("ToHaveBeenLastCalledWith", recorder, recorder.CallCount(), args)
}

// ToHaveBeenNthCalledWith checks the arguments of the nth call, counting from 1.
// Asking for a call that was never made fails with ErrOutOfRange in the chain.
func (e *Expectation) ToHaveBeenNthCalledWith(nth int, args ...any) error {
	recorder, err := e.recorder("ToHaveBeenNthCalledWith")
	if err != nil {
		return err
	}

	return e.nthCalledWith("ToHaveBeenNthCalledWith", recorder, nth, args)
}

func (e *Expectation) name() string {
	if named, ok := e.actual.(interface{ Name() string }); ok {
		return named.Name()
	}

	return "mock"
}

func (e *Expectation) nthCalledWith(matcher string, recorder *CallRecorder, nth int, args []any) error {
	actual, err := recorder.CallArgsAt(nth - 1)
	if err != nil {
		if e.negate {
			return nil
		}

		return &AssertionFailure{
			Matcher:  matcher,
			Expected: args,
			Message:  fmt.Sprintf("%s call %d: %v", e.name(), nth, err),
			cause:    err,
		}
	}

	return e.verdict(Equal(actual, args), func() *AssertionFailure {
		return &AssertionFailure{
			Matcher:  matcher,
			Actual:   actual,
			Expected: args,
			Message:  fmt.Sprintf("expected %s call %d to have args %s, got %s", e.name(), nth, Describe(args), Describe(actual)),
			Diff:     AssertionDiff(actual, args),
		}
	})
}

// recorder finds the call recorder behind the actual value.
func (e *Expectation) recorder(matcher string) (*CallRecorder, error) {
	recorded, ok := e.actual.(interface{ Recorder() *CallRecorder })
	if !ok || recorded.Recorder() == nil {
		return nil, &AssertionFailure{
			Matcher: matcher,
			Actual:  e.actual,
			Message: fmt.Sprintf("%v: got %T", ErrNotMock, e.actual),
			cause:   ErrNotMock,
		}
	}

	return recorded.Recorder(), nil
}

// verdict applies negation to a matcher result. The failure is only built when
// the matcher fails, since rendering it can walk the whole value.
func (e *Expectation) verdict(pass bool, failed func() *AssertionFailure) error {
	if !e.negate {
		if pass {
			return nil
		}

		return failed()
	}

	if !pass {
		return nil
	}

	failure := failed()

	return &AssertionFailure{
		Matcher:  "Not." + failure.Matcher,
		Actual:   failure.Actual,
		Expected: failure.Expected,
		Message:  fmt.Sprintf("expected %s not to match %s", Describe(failure.Actual), Describe(failure.Expected)),
	}
}
