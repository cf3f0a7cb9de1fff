package core

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers classify failures with errors.Is.
var (
	// ErrOutOfRange is returned when a recorded call is requested beyond the recorded count.
	ErrOutOfRange = errors.New("call index out of range")
	// ErrAlreadySubstituted is returned when a holder already has a live substitution.
	ErrAlreadySubstituted = errors.New("target already substituted")
	// ErrNotSubstituted is returned when restoring a holder with no live substitution.
	ErrNotSubstituted = errors.New("target not substituted")
	// ErrNilTarget is returned when a nil holder is passed to the registry.
	ErrNilTarget = errors.New("nil substitution target")
	// ErrDuplicateName is returned when registering a test name twice under RejectDuplicates.
	ErrDuplicateName = errors.New("duplicate test name")
	// ErrTimeout is the failure recorded for a case that outlives the runner's timeout.
	ErrTimeout = errors.New("test timed out")
	// ErrNotMock is returned by call matchers given a value that records no calls.
	ErrNotMock = errors.New("value is not a mock or call recorder")
	// ErrExited is recorded when a callback stops its goroutine without returning.
	ErrExited = errors.New("test exited without returning")
)

// AssertionFailure is the error every matcher returns on a mismatch.
// It carries the compared values for reporting.
type AssertionFailure struct {
	Matcher  string
	Actual   any
	Expected any
	Message  string
	Diff     string

	cause error
}

func (f *AssertionFailure) Error() string {
	if f.Message != "" {
		return fmt.Sprintf("%s: %s", f.Matcher, f.Message)
	}

	return fmt.Sprintf("%s: expected %s, got %s", f.Matcher, Describe(f.Expected), Describe(f.Actual))
}

// Unwrap exposes the underlying cause, e.g. ErrOutOfRange for an Nth-call miss.
func (f *AssertionFailure) Unwrap() error {
	return f.cause
}

// PanicError wraps a value recovered from a panicking test callback.
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Unwrap returns the panic value when it is itself an error.
func (p *PanicError) Unwrap() error {
	if err, ok := p.Value.(error); ok {
		return err
	}

	return nil
}
