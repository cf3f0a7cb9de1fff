// Package imprun provides a small test harness for Go: mock functions that record
// their calls, substitution of function variables with automatic restore,
// jest-style matchers, and a sequential runner that isolates every case.
//
// This is the public API entry point. Implementation lives in internal/core.
package imprun

import (
	"log/slog"
	"time"

	"github.com/toejough/imprun/internal/core"
)

// Types re-exported from internal/core.

// AssertionFailure is the error every matcher returns on a mismatch.
type AssertionFailure = core.AssertionFailure

// Callback is a test body run by a Runner.
type Callback = core.Callback

// CallRecorder is the ordered, append-only record of a mock's calls.
type CallRecorder = core.CallRecorder

// DuplicatePolicy decides whether two cases may share a name.
type DuplicatePolicy = core.DuplicatePolicy

// Expectation binds an actual value to the matchers.
type Expectation = core.Expectation

// FailureKind classifies why a case failed.
type FailureKind = core.FailureKind

// Future is the result of a function running in its own goroutine.
type Future[T any] = core.Future[T]

// Matcher defines the interface for flexible value matching.
type Matcher = core.Matcher

// Mock is a callable of type F that records every invocation.
type Mock[F any] = core.Mock[F]

// MockOption configures a Mock.
type MockOption = core.MockOption

// Observer is told about each case as it starts and finishes.
type Observer = core.Observer

// Option configures a Runner.
type Option = core.Option

// Outcome is the result of running one test case.
type Outcome = core.Outcome

// PanicError wraps a value recovered from a panicking callback.
type PanicError = core.PanicError

// RecordedCall is one recorded invocation.
type RecordedCall = core.RecordedCall

// Registry tracks live substitutions.
type Registry = core.Registry

// Report is the ordered record of one run.
type Report = core.Report

// Runner registers named test cases and runs them one at a time.
type Runner = core.Runner

// Status is a test case's lifecycle state.
type Status = core.Status

// TestReporter is the minimal interface imprun needs from test frameworks.
type TestReporter = core.TestReporter

// Timer abstracts time-based operations for testability.
type Timer = core.Timer

// Constants re-exported from internal/core.
const (
	RejectDuplicates = core.RejectDuplicates
	AllowDuplicates  = core.AllowDuplicates

	StatusPending = core.StatusPending
	StatusRunning = core.StatusRunning
	StatusPassed  = core.StatusPassed
	StatusFailed  = core.StatusFailed

	FailureNone       = core.FailureNone
	FailureAssertion  = core.FailureAssertion
	FailureOutOfRange = core.FailureOutOfRange
	FailureUsage      = core.FailureUsage
	FailureRuntime    = core.FailureRuntime
	FailureTimeout    = core.FailureTimeout
	FailureCanceled   = core.FailureCanceled
)

// Errors re-exported from internal/core.
//
//nolint:gochecknoglobals // Sentinels must be the same values core returns
var (
	ErrAlreadySubstituted = core.ErrAlreadySubstituted
	ErrDuplicateName      = core.ErrDuplicateName
	ErrExited             = core.ErrExited
	ErrNilTarget          = core.ErrNilTarget
	ErrNotMock            = core.ErrNotMock
	ErrNotSubstituted     = core.ErrNotSubstituted
	ErrOutOfRange         = core.ErrOutOfRange
	ErrTimeout            = core.ErrTimeout
)

// Functions re-exported from internal/core.

// Any returns a matcher that matches any value.
func Any() Matcher {
	return core.Any()
}

// Assert returns the first non-nil check.
func Assert(checks ...error) error {
	return core.Assert(checks...)
}

// Classify maps a failure onto its kind.
func Classify(err error) FailureKind {
	return core.Classify(err)
}

// Default returns the process-wide substitution registry.
func Default() *Registry {
	return core.Default()
}

// Expect returns the matchers bound to actual.
func Expect(actual any) *Expectation {
	return core.Expect(actual)
}

// ForTest returns the substitution registry for t, restored when t completes.
func ForTest(t TestReporter) *Registry {
	return core.ForTest(t)
}

// Go starts fn in a goroutine and returns a Future for its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	return core.Go(fn)
}

// MatchValue checks if actual matches expected.
func MatchValue(actual, expected any) (bool, string) {
	return core.MatchValue(actual, expected)
}

// Must panics with err when it is non-nil.
func Must(err error) {
	core.Must(err)
}

// NewCallRecorder creates an empty call recorder.
func NewCallRecorder() *CallRecorder {
	return core.NewCallRecorder()
}

// NewMock creates a mock of function type F with the default implementation.
func NewMock[F any](options ...MockOption) *Mock[F] {
	return core.NewMock[F](options...)
}

// NewRegistry creates an empty substitution registry.
func NewRegistry() *Registry {
	return core.NewRegistry()
}

// NewRunner creates a runner.
func NewRunner(options ...Option) *Runner {
	return core.NewRunner(options...)
}

// Resolved returns an already-completed Future.
func Resolved[T any](value T, err error) *Future[T] {
	return core.Resolved(value, err)
}

// Satisfies returns a matcher that uses a predicate function to check for a match.
func Satisfies[T any](predicate func(T) error) Matcher {
	return core.Satisfies(predicate)
}

// Substitute stores replacement into *target until restored.
func Substitute[T any](reg *Registry, target *T, replacement T) error {
	return core.Substitute(reg, target, replacement)
}

// SubstituteMock substitutes the mock's callable into *target.
func SubstituteMock[F any](reg *Registry, target *F, mock *Mock[F]) error {
	return core.SubstituteMock(reg, target, mock)
}

// WithClock sets the clock used for durations and report timestamps.
func WithClock(now func() time.Time) Option {
	return core.WithClock(now)
}

// WithDuplicates sets the duplicate-name policy.
func WithDuplicates(policy DuplicatePolicy) Option {
	return core.WithDuplicates(policy)
}

// WithLogger sets the runner's structured logger.
func WithLogger(logger *slog.Logger) Option {
	return core.WithLogger(logger)
}

// WithName names a mock for failure messages.
func WithName(name string) MockOption {
	return core.WithName(name)
}

// WithObserver sets the observer notified as cases start and finish.
func WithObserver(observer Observer) Option {
	return core.WithObserver(observer)
}

// WithRegistry restores every substitution in reg after each case.
func WithRegistry(reg *Registry) Option {
	return core.WithRegistry(reg)
}

// WithTimeout bounds each case's wall-clock time.
func WithTimeout(d time.Duration) Option {
	return core.WithTimeout(d)
}

// WithTimer sets the timer used for the per-case timeout.
func WithTimer(timer Timer) Option {
	return core.WithTimer(timer)
}

// WrapFunc creates a mock whose implementation is impl.
func WrapFunc[F any](impl F, options ...MockOption) *Mock[F] {
	return core.WrapFunc(impl, options...)
}
