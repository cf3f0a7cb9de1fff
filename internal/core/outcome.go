package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Status is a test case's position in Pending → Running → {Passed, Failed}.
type Status int

// Status values.
const (
	StatusPending Status = iota
	StatusRunning
	StatusPassed
	StatusFailed
)

// FailureKind classifies why a case failed.
type FailureKind int

// FailureKind values.
const (
	FailureNone FailureKind = iota
	FailureAssertion
	FailureOutOfRange
	FailureUsage
	FailureRuntime
	FailureTimeout
	FailureCanceled
)

// Outcome is the result of running one test case.
type Outcome struct {
	Name     string
	Status   Status
	Kind     FailureKind
	Failure  error
	Duration time.Duration
}

// Report is the ordered record of one run. Outcomes are in execution order, which
// is registration order.
type Report struct {
	ID       string
	Started  time.Time
	Duration time.Duration
	Outcomes []Outcome
}

// Classify maps a failure onto its kind.
func Classify(err error) FailureKind {
	var assertion *AssertionFailure

	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrTimeout):
		return FailureTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureCanceled
	case errors.Is(err, ErrOutOfRange):
		return FailureOutOfRange
	case errors.Is(err, ErrAlreadySubstituted), errors.Is(err, ErrNotSubstituted),
		errors.Is(err, ErrNilTarget), errors.Is(err, ErrDuplicateName):
		return FailureUsage
	case errors.As(err, &assertion):
		return FailureAssertion
	default:
		return FailureRuntime
	}
}

// Failed returns the number of failed outcomes.
func (r *Report) Failed() int {
	return r.count(StatusFailed)
}

// OK reports whether every outcome passed.
func (r *Report) OK() bool {
	return r.Failed() == 0
}

// Passed returns the number of passed outcomes.
func (r *Report) Passed() int {
	return r.count(StatusPassed)
}

// unexported variables.
var (
	errUnknownName = errors.New("unknown name")
)

func (r *Report) count(status Status) int {
	n := 0

	for _, outcome := range r.Outcomes {
		if outcome.Status == status {
			n++
		}
	}

	return n
}

func (k FailureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the names MarshalText produces.
func (k *FailureKind) UnmarshalText(text []byte) error {
	for candidate := FailureNone; candidate <= FailureCanceled; candidate++ {
		if candidate.String() == string(text) {
			*k = candidate

			return nil
		}
	}

	return fmt.Errorf("%w: %q", errUnknownName, text)
}

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return ""
	case FailureAssertion:
		return "assertion"
	case FailureOutOfRange:
		return "out-of-range"
	case FailureUsage:
		return "usage"
	case FailureRuntime:
		return "runtime"
	case FailureTimeout:
		return "timeout"
	case FailureCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the names MarshalText produces.
func (s *Status) UnmarshalText(text []byte) error {
	for candidate := StatusPending; candidate <= StatusFailed; candidate++ {
		if candidate.String() == string(text) {
			*s = candidate

			return nil
		}
	}

	return fmt.Errorf("%w: %q", errUnknownName, text)
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
