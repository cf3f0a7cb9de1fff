package core

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// MockOption customizes a mock at construction.
type MockOption func(string) string

// Mock wraps a function of type F, records every invocation, and delegates to a
// configurable implementation. The zero implementation returns zero values.
type Mock[F any] struct {
	name     string
	funcType reflect.Type
	recorder *CallRecorder
	fn       F

	mu   sync.RWMutex
	impl reflect.Value
}

// NewMock creates a mock of function type F with the no-op default implementation.
func NewMock[F any](options ...MockOption) *Mock[F] {
	funcType := reflect.TypeFor[F]()
	panicIfNotFuncType(funcType)

	name := "mock"
	for _, o := range options {
		name = o(name)
	}

	mock := &Mock[F]{
		name:     name,
		funcType: funcType,
		recorder: NewCallRecorder(),
	}

	// MakeFunc returns a value of exactly funcType, so the assertion cannot fail.
	mock.fn = reflect.MakeFunc(funcType, mock.dispatch).Interface().(F) //nolint:forcetypeassert

	return mock
}

// WithName sets the name the mock reports in assertion failures.
func WithName(name string) MockOption {
	return func(string) string {
		return name
	}
}

// WrapFunc creates a mock whose implementation is impl. The mock is named after impl
// unless a WithName option says otherwise.
func WrapFunc[F any](impl F, options ...MockOption) *Mock[F] {
	named := append([]MockOption{WithName(funcName(impl))}, options...)
	mock := NewMock[F](named...)
	mock.SetImplementation(impl)

	return mock
}

// CallCount returns how many times the mock has been invoked since the last reset.
func (m *Mock[F]) CallCount() int {
	return m.recorder.CallCount()
}

// Calls returns the argument list of every recorded call, in invocation order.
func (m *Mock[F]) Calls() [][]any {
	return m.recorder.AllCallArgs()
}

// Func returns the typed callable. Store it wherever the real function would go.
func (m *Mock[F]) Func() F {
	return m.fn
}

// Invoke calls the mock with dynamically typed arguments and returns its results.
// Untyped nils become the zero value of the corresponding parameter.
func (m *Mock[F]) Invoke(args ...any) []any {
	in := m.reflectArgs(args)

	out := reflect.ValueOf(m.fn).Call(in)

	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}

	return results
}

// Name returns the mock's diagnostic name.
func (m *Mock[F]) Name() string {
	return m.name
}

// Recorder exposes the mock's call recorder.
func (m *Mock[F]) Recorder() *CallRecorder {
	return m.recorder
}

// Reset clears the call history and keeps the current implementation.
func (m *Mock[F]) Reset() {
	m.recorder.Reset()
}

// RestoreDefault clears the call history and reverts to the no-op implementation.
func (m *Mock[F]) RestoreDefault() {
	m.recorder.Reset()

	m.mu.Lock()
	m.impl = reflect.Value{}
	m.mu.Unlock()
}

// SetImplementation replaces the implementation for subsequent invocations.
// Invocations already dispatched keep running the previous implementation.
// A nil impl reverts to the no-op default.
func (m *Mock[F]) SetImplementation(impl F) {
	value := reflect.ValueOf(impl)
	if !value.IsValid() || value.IsNil() {
		value = reflect.Value{}
	}

	m.mu.Lock()
	m.impl = value
	m.mu.Unlock()
}

// current returns the implementation to dispatch to.
func (m *Mock[F]) current() reflect.Value {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.impl
}

// dispatch is the MakeFunc body: record first, then delegate.
func (m *Mock[F]) dispatch(args []reflect.Value) []reflect.Value {
	m.recorder.Record(unreflectArgs(args, m.funcType.IsVariadic()))

	impl := m.current()
	if !impl.IsValid() {
		return zeroResults(m.funcType)
	}

	if m.funcType.IsVariadic() {
		return impl.CallSlice(args)
	}

	return impl.Call(args)
}

// reflectArgs converts dynamic args into call values, panicking on arity or type
// mismatches the same way the typed function would refuse to compile.
func (m *Mock[F]) reflectArgs(args []any) []reflect.Value {
	numIn := m.funcType.NumIn()
	variadic := m.funcType.IsVariadic()

	switch {
	case !variadic && len(args) != numIn:
		panic(fmt.Sprintf("wrong number of args for %s: takes %d, got %d", m.name, numIn, len(args)))
	case variadic && len(args) < numIn-1:
		panic(fmt.Sprintf("too few args for %s: takes at least %d, got %d", m.name, numIn-1, len(args)))
	}

	in := make([]reflect.Value, len(args))

	for index, arg := range args {
		paramType := m.paramType(index)

		if arg == nil {
			in[index] = reflect.Zero(paramType)

			continue
		}

		value := reflect.ValueOf(arg)
		if !value.Type().AssignableTo(paramType) {
			panic(fmt.Sprintf("wrong arg type for %s at index %d: want %s, got %s",
				m.name, index, paramType, value.Type()))
		}

		in[index] = value
	}

	return in
}

// paramType returns the type of the index'th argument, looking through a variadic tail.
func (m *Mock[F]) paramType(index int) reflect.Type {
	last := m.funcType.NumIn() - 1
	if m.funcType.IsVariadic() && index >= last {
		return m.funcType.In(last).Elem()
	}

	return m.funcType.In(index)
}

// funcName gets the function's name, or "mock" for nil functions.
func funcName(f any) string {
	value := reflect.ValueOf(f)
	if !value.IsValid() || value.Kind() != reflect.Func || value.IsNil() {
		return "mock"
	}

	name := runtime.FuncForPC(value.Pointer()).Name()
	name = strings.TrimSuffix(name, "-fm")

	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	return name
}

// panicIfNotFuncType panics if the mock's type parameter is not a function type.
func panicIfNotFuncType(funcType reflect.Type) {
	if funcType == nil || funcType.Kind() != reflect.Func {
		panic(fmt.Sprintf("must mock a function type. received %v instead.", funcType))
	}
}

// unreflectArgs converts call values back to plain values, expanding a variadic tail
// so the record matches what the caller wrote.
func unreflectArgs(args []reflect.Value, variadic bool) []any {
	out := make([]any, 0, len(args))

	for index, arg := range args {
		if variadic && index == len(args)-1 {
			for j := range arg.Len() {
				out = append(out, arg.Index(j).Interface())
			}

			break
		}

		out = append(out, arg.Interface())
	}

	return out
}

// zeroResults builds the zero return values for funcType.
func zeroResults(funcType reflect.Type) []reflect.Value {
	out := make([]reflect.Value, funcType.NumOut())
	for i := range out {
		out[i] = reflect.Zero(funcType.Out(i))
	}

	return out
}
