package core

import (
	"fmt"
	"sync"
)

// RecordedCall is one invocation captured by a CallRecorder.
type RecordedCall struct {
	Args  []any
	Index int
}

// CallRecorder tracks the invocations of one wrapped function.
// It is safe for concurrent use; calls are ordered by when they started.
type CallRecorder struct {
	mu    sync.Mutex
	calls []RecordedCall
}

// NewCallRecorder creates an empty recorder.
func NewCallRecorder() *CallRecorder {
	return &CallRecorder{}
}

// AllCallArgs returns the argument lists of every recorded call, in order.
func (r *CallRecorder) AllCallArgs() [][]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([][]any, len(r.calls))
	for i, call := range r.calls {
		all[i] = cloneArgs(call.Args)
	}

	return all
}

// CallArgsAt returns the arguments of the nth (0-indexed) recorded call.
func (r *CallRecorder) CallArgsAt(n int) ([]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n < 0 || n >= len(r.calls) {
		return nil, fmt.Errorf("%w: call %d requested, %d recorded", ErrOutOfRange, n, len(r.calls))
	}

	return cloneArgs(r.calls[n].Args), nil
}

// CallCount returns the number of calls recorded since the last reset.
func (r *CallRecorder) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.calls)
}

// Calls returns a snapshot of the recorded calls.
func (r *CallRecorder) Calls() []RecordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()

	calls := make([]RecordedCall, len(r.calls))
	for i, call := range r.calls {
		calls[i] = RecordedCall{Args: cloneArgs(call.Args), Index: call.Index}
	}

	return calls
}

// Record appends a call with the given arguments.
func (r *CallRecorder) Record(args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, RecordedCall{Args: cloneArgs(args), Index: len(r.calls)})
}

// Recorder returns r, so a bare recorder satisfies the call matchers.
func (r *CallRecorder) Recorder() *CallRecorder {
	return r
}

// Reset forgets every recorded call.
func (r *CallRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = nil
}

// cloneArgs copies the slice header contents so callers can't mutate the record.
func cloneArgs(args []any) []any {
	if args == nil {
		return []any{}
	}

	out := make([]any, len(args))
	copy(out, args)

	return out
}
