package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Callback is a test body. Returning a non-nil error fails the case; so does
// panicking. A callback that blocks (awaiting a Future, a channel, a wrapped async
// call) is awaited by the runner before the next case starts.
type Callback func(ctx context.Context) error

// DuplicatePolicy decides whether two cases may share a name.
type DuplicatePolicy int

// DuplicatePolicy values.
const (
	RejectDuplicates DuplicatePolicy = iota
	AllowDuplicates
)

// Observer is told about each case as it starts and finishes.
type Observer interface {
	CaseStarted(name string)
	CaseFinished(outcome Outcome)
}

// Option configures a Runner.
type Option func(*Runner)

// Runner registers named test cases and runs them one at a time, in registration
// order, isolating each case's failure from the rest of the run.
type Runner struct {
	mu         sync.Mutex
	cases      []TestCase
	names      map[string]bool
	timeout    time.Duration
	duplicates DuplicatePolicy
	registry   *Registry
	logger     *slog.Logger
	observer   Observer
	timer      Timer
	now        func() time.Time
}

// TestCase is a registered case. It is consumed by exactly one Run.
type TestCase struct {
	Name     string
	Callback Callback
}

// Timer abstracts time-based operations for testability.
type Timer interface {
	After(d time.Duration) <-chan time.Time
}

// NewRunner creates a runner. By default duplicate names are rejected, cases have
// no timeout, and logs are discarded.
func NewRunner(options ...Option) *Runner {
	runner := &Runner{
		names:  make(map[string]bool),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		timer:  realTimer{},
		now:    time.Now,
	}

	for _, o := range options {
		o(runner)
	}

	return runner
}

// WithClock sets the clock used for durations and report timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithDuplicates sets the duplicate-name policy.
func WithDuplicates(policy DuplicatePolicy) Option {
	return func(r *Runner) {
		r.duplicates = policy
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithObserver sets the observer notified as cases start and finish.
func WithObserver(observer Observer) Option {
	return func(r *Runner) {
		r.observer = observer
	}
}

// WithRegistry makes the runner restore every substitution in reg after each case,
// so no substitution leaks into the next one.
func WithRegistry(reg *Registry) Option {
	return func(r *Runner) {
		r.registry = reg
	}
}

// WithTimeout bounds each case's wall-clock time. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithTimer sets the timer used for the per-case timeout.
func WithTimer(timer Timer) Option {
	return func(r *Runner) {
		r.timer = timer
	}
}

// Len returns the number of cases waiting to run.
func (r *Runner) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.cases)
}

// Register appends a case. Under RejectDuplicates a repeated name fails with
// ErrDuplicateName.
func (r *Runner) Register(name string, callback Callback) error {
	if callback == nil {
		return fmt.Errorf("%w: %q", errNilCallback, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.duplicates == RejectDuplicates && r.names[name] {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	r.names[name] = true
	r.cases = append(r.cases, TestCase{Name: name, Callback: callback})

	return nil
}

// Run executes every registered case and returns the report. The report has one
// outcome per case even when ctx is cancelled part-way: cases that never started
// fail with the context's error. Run consumes the registered cases.
func (r *Runner) Run(ctx context.Context) *Report {
	r.mu.Lock()
	cases := r.cases
	r.cases = nil
	r.names = make(map[string]bool)
	r.mu.Unlock()

	started := r.now()
	report := &Report{
		ID:       uuid.NewString(),
		Started:  started,
		Outcomes: make([]Outcome, 0, len(cases)),
	}

	r.logger.Info("run started", "id", report.ID, "cases", len(cases))

	for _, tc := range cases {
		var outcome Outcome

		if err := ctx.Err(); err != nil {
			outcome = Outcome{Name: tc.Name, Status: StatusFailed, Kind: Classify(err), Failure: err}
		} else {
			outcome = r.runCase(ctx, tc)
		}

		report.Outcomes = append(report.Outcomes, outcome)

		if r.observer != nil {
			r.observer.CaseFinished(outcome)
		}
	}

	report.Duration = r.now().Sub(started)

	r.logger.Info("run finished",
		"id", report.ID,
		"passed", report.Passed(),
		"failed", report.Failed(),
		"duration", report.Duration,
	)

	return report
}

// await waits for the callback's result, the timeout, or cancellation.
func (r *Runner) await(ctx context.Context, done <-chan error) error {
	var timeoutChan <-chan time.Time

	if r.timeout > 0 {
		timeoutChan = r.timer.After(r.timeout)
	}

	select {
	case err := <-done:
		return err
	case <-timeoutChan:
		return fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// restoreSubstitutions restores whatever the case left substituted.
func (r *Runner) restoreSubstitutions(name string) {
	if r.registry == nil {
		return
	}

	if leaked := r.registry.Live(); leaked > 0 {
		r.logger.Warn("substitutions leaked, restoring", "case", name, "count", leaked)
	}

	r.registry.RestoreAll()
}

// runCase runs one callback in its own goroutine and waits for it.
func (r *Runner) runCase(ctx context.Context, tc TestCase) Outcome {
	if r.observer != nil {
		r.observer.CaseStarted(tc.Name)
	}

	r.logger.Debug("case started", "case", tc.Name)

	caseCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := r.now()
	done := make(chan error, 1)

	go invoke(caseCtx, tc.Callback, done)

	err := r.await(ctx, done)

	r.restoreSubstitutions(tc.Name)

	outcome := Outcome{
		Name:     tc.Name,
		Status:   StatusPassed,
		Duration: r.now().Sub(start),
	}

	if err != nil {
		outcome.Status = StatusFailed
		outcome.Kind = Classify(err)
		outcome.Failure = err
	}

	r.logger.Info("case finished",
		"case", tc.Name,
		"status", outcome.Status,
		"kind", outcome.Kind,
		"duration", outcome.Duration,
	)

	return outcome
}

// unexported variables.
var (
	errNilCallback = errors.New("nil test callback")
)

type realTimer struct{}

func (realTimer) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// invoke calls the callback and sends exactly one result on done, whether the
// callback returns, panics, or exits its goroutine.
func invoke(ctx context.Context, callback Callback, done chan<- error) {
	returned := false

	defer func() {
		if returned {
			return
		}

		recovered := recover()
		if recovered == nil {
			done <- ErrExited

			return
		}

		var assertion *AssertionFailure
		if err, ok := recovered.(error); ok && errors.As(err, &assertion) {
			done <- err

			return
		}

		done <- &PanicError{Value: recovered, Stack: debug.Stack()}
	}()

	err := callback(ctx)
	returned = true
	done <- err
}

// Must panics with err when it is non-nil. Inside a callback the runner reports
// the panic as that assertion failure, which lets a body assert without returning.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}
