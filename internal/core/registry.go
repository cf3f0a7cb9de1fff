package core

import (
	"fmt"
	"sync"
)

// Registry tracks live substitutions: holders whose value has been swapped for a
// replacement, together with the original to write back. At most one substitution
// is live per holder, and writes happen under the registry lock.
type Registry struct {
	mu    sync.Mutex
	live  map[any]*substitution
	stack []*substitution
}

// TestReporter is the minimal interface the harness needs from test frameworks.
// testing.T, testing.B, and *T all implement this interface.
type TestReporter interface {
	Helper()
	Fatalf(format string, args ...any)
}

// NewRegistry creates an empty substitution registry.
func NewRegistry() *Registry {
	return &Registry{live: make(map[any]*substitution)}
}

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// ForTest returns the registry for the given test, creating one if needed.
// Multiple calls with the same TestReporter return the same Registry.
//
// If the TestReporter supports Cleanup (like *testing.T), every substitution is
// restored and the registry forgotten when the test completes.
func ForTest(t TestReporter) *Registry {
	testRegistriesMu.Lock()
	defer testRegistriesMu.Unlock()

	if reg, ok := testRegistries[t]; ok {
		return reg
	}

	reg := NewRegistry()
	testRegistries[t] = reg

	if cr, ok := t.(cleanupRegistrar); ok {
		cr.Cleanup(func() {
			reg.RestoreAll()

			testRegistriesMu.Lock()
			delete(testRegistries, t)
			testRegistriesMu.Unlock()
		})
	}

	return reg
}

// Substitute stores replacement into *target, remembering the current value so
// Restore can put it back. It fails with ErrAlreadySubstituted rather than stacking,
// so the true original is never lost.
func Substitute[T any](reg *Registry, target *T, replacement T) error {
	if target == nil {
		return ErrNilTarget
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.live[target]; ok {
		return fmt.Errorf("%w: %T at %p", ErrAlreadySubstituted, target, target)
	}

	original := *target
	sub := &substitution{
		target:  target,
		restore: func() { *target = original },
	}

	*target = replacement

	reg.live[target] = sub
	reg.stack = append(reg.stack, sub)

	return nil
}

// SubstituteMock substitutes the mock's typed callable into *target.
func SubstituteMock[F any](reg *Registry, target *F, mock *Mock[F]) error {
	return Substitute(reg, target, mock.Func())
}

// IsSubstituted reports whether target has a live substitution.
func (r *Registry) IsSubstituted(target any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.live[target]

	return ok
}

// Live returns the number of live substitutions.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.stack)
}

// Restore writes the original value back into target. Restoring a holder with no
// live substitution, including a second restore, fails with ErrNotSubstituted.
func (r *Registry) Restore(target any) error {
	if target == nil {
		return ErrNilTarget
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.live[target]
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotSubstituted, target)
	}

	sub.restore()
	delete(r.live, target)

	for i, candidate := range r.stack {
		if candidate == sub {
			r.stack = append(r.stack[:i], r.stack[i+1:]...)

			break
		}
	}

	return nil
}

// RestoreAll restores every live substitution, most recent first. It is a no-op
// when nothing is live.
func (r *Registry) RestoreAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.stack) - 1; i >= 0; i-- {
		sub := r.stack[i]
		sub.restore()
		delete(r.live, sub.target)
	}

	r.stack = nil
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Process-wide registry is the shared substitution surface
	defaultRegistry = NewRegistry()
	//nolint:gochecknoglobals // Per-test registries for ForTest
	testRegistries = make(map[TestReporter]*Registry)
	//nolint:gochecknoglobals // Mutex for testRegistries
	testRegistriesMu sync.Mutex
)

// cleanupRegistrar is the interface needed for registering cleanup functions.
// This is satisfied by *testing.T and *testing.B.
type cleanupRegistrar interface {
	Cleanup(cleanupFunc func())
}

type substitution struct {
	target  any
	restore func()
}
