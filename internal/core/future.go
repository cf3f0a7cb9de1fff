package core

import (
	"context"
	"runtime/debug"
)

// Future is the result of a function running in its own goroutine. A test callback
// suspends by awaiting one; the runner in turn awaits the callback.
type Future[T any] struct {
	done     chan struct{}
	returned T
	err      error
	panicked *PanicError
}

// Go starts fn in a goroutine and returns a Future for its result. A panic in fn is
// captured and surfaced by Await as a *PanicError.
func Go[T any](fn func() (T, error)) *Future[T] {
	future := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(future.done)

		defer func() {
			if r := recover(); r != nil {
				future.panicked = &PanicError{Value: r, Stack: debug.Stack()}
			}
		}()

		future.returned, future.err = fn()
	}()

	return future
}

// Resolved returns an already-completed Future.
func Resolved[T any](value T, err error) *Future[T] {
	future := &Future[T]{done: make(chan struct{}), returned: value, err: err}
	close(future.done)

	return future
}

// Await blocks until the function returns or panics, or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}

	if f.panicked != nil {
		var zero T

		return zero, f.panicked
	}

	return f.returned, f.err
}

// Done is closed once the function has returned or panicked.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
