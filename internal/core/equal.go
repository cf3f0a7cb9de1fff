package core

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/akedrou/textdiff"
)

// valueKind is the closed set of shapes structural equality understands.
// Pointers and interfaces are transparent: they classify as whatever they hold.
type valueKind int

const (
	kindNil valueKind = iota
	kindPrimitive
	kindSequence
	kindMapping
	kindOpaque // funcs, channels, unsafe pointers: compared by identity
)

// Equal reports whether actual structurally equals expected. Sequences compare
// element-wise, mappings key-by-key (structs are mappings of their field names),
// and numbers by value. Any Matcher found in expected is applied to the value at
// the same position.
func Equal(actual, expected any) bool {
	eq := &equalizer{visited: make(map[visit]bool)}

	return eq.equal(reflect.ValueOf(actual), reflect.ValueOf(expected))
}

// Same reports whether actual and expected are the same value: == for comparable
// values, reference identity for slices, maps, funcs, and channels. An untyped nil
// expected matches any nil reference.
func Same(actual, expected any) (same bool) {
	if expected == nil || actual == nil {
		return isNilValue(reflect.ValueOf(actual)) && isNilValue(reflect.ValueOf(expected))
	}

	actualType := reflect.TypeOf(actual)
	if actualType != reflect.TypeOf(expected) {
		return false
	}

	if actualType.Comparable() {
		// Comparable structs may still hold incomparable dynamic values.
		defer func() {
			if recover() != nil {
				same = false
			}
		}()

		return actual == expected
	}

	actualValue := reflect.ValueOf(actual)
	expectedValue := reflect.ValueOf(expected)

	switch actualValue.Kind() { //nolint:exhaustive // everything else is comparable
	case reflect.Slice:
		return actualValue.Pointer() == expectedValue.Pointer() && actualValue.Len() == expectedValue.Len()
	case reflect.Map, reflect.Func:
		return actualValue.Pointer() == expectedValue.Pointer()
	default:
		return false
	}
}

type visit struct {
	a, b uintptr
	typ  reflect.Type
}

type equalizer struct {
	visited map[visit]bool
}

func (e *equalizer) equal(actual, expected reflect.Value) bool {
	if matched, ok := e.matchWith(actual, expected); ok {
		return matched
	}

	actual = deref(actual)
	expected = deref(expected)

	kind := classify(actual)
	if kind != classify(expected) {
		return false
	}

	if e.seen(actual, expected) {
		return true
	}

	switch kind {
	case kindNil:
		return true
	case kindPrimitive:
		return primitiveEqual(actual, expected)
	case kindSequence:
		return e.sequenceEqual(actual, expected)
	case kindMapping:
		return e.mappingEqual(actual, expected)
	case kindOpaque:
		return actual.Kind() == expected.Kind() && actual.Pointer() == expected.Pointer()
	}

	return false
}

// matchWith applies expected as a Matcher when it is one.
func (e *equalizer) matchWith(actual, expected reflect.Value) (matched, ok bool) {
	if !expected.IsValid() || !expected.CanInterface() {
		return false, false
	}

	matcher, isMatcher := expected.Interface().(Matcher)
	if !isMatcher {
		return false, false
	}

	var actualValue any
	if actual.IsValid() && actual.CanInterface() {
		actualValue = actual.Interface()
	}

	success, err := matcher.Match(actualValue)

	return err == nil && success, true
}

func (e *equalizer) mappingEqual(actual, expected reflect.Value) bool {
	if actual.Kind() == reflect.Map && expected.Kind() == reflect.Map {
		return e.mapEqual(actual, expected)
	}

	actualFields := fields(actual)
	expectedFields := fields(expected)

	if len(actualFields) != len(expectedFields) {
		return false
	}

	for key, expectedField := range expectedFields {
		actualField, ok := actualFields[key]
		if !ok || !e.equal(actualField, expectedField) {
			return false
		}
	}

	return true
}

// mapEqual pairs every expected key with a distinct actual key. Keys of the same
// type are looked up directly; otherwise a key pairs with one that is structurally
// equal, so 1 and int64(1) pair but 1 and "1" do not.
func (e *equalizer) mapEqual(actual, expected reflect.Value) bool {
	if actual.Len() != expected.Len() {
		return false
	}

	sameKeys := actual.Type().Key() == expected.Type().Key()
	actualKeys := actual.MapKeys()
	used := make([]bool, len(actualKeys))

	iter := expected.MapRange()
	for iter.Next() {
		var actualValue reflect.Value

		if sameKeys {
			actualValue = actual.MapIndex(iter.Key())
		} else {
			actualValue = pairKey(actual, actualKeys, used, iter.Key())
		}

		if !actualValue.IsValid() || !e.equal(actualValue, iter.Value()) {
			return false
		}
	}

	return true
}

// seen guards against cycles through shared references. Maps and slices are keyed
// by their backing pointer; structs and arrays reached through a pointer are keyed
// by their address, which is what a self-referencing struct revisits.
func (e *equalizer) seen(actual, expected reflect.Value) bool {
	if !actual.IsValid() || !expected.IsValid() || actual.Type() != expected.Type() {
		return false
	}

	var key visit

	switch actual.Kind() { //nolint:exhaustive // only reference-carrying kinds can cycle
	case reflect.Map, reflect.Slice:
		if actual.IsNil() || expected.IsNil() {
			return false
		}

		key = visit{a: actual.Pointer(), b: expected.Pointer(), typ: actual.Type()}
	case reflect.Struct, reflect.Array:
		if !actual.CanAddr() || !expected.CanAddr() {
			return false
		}

		key = visit{a: actual.UnsafeAddr(), b: expected.UnsafeAddr(), typ: actual.Type()}
	default:
		return false
	}

	if e.visited[key] {
		return true
	}

	e.visited[key] = true

	return false
}

// pairKey finds the first unused actual key structurally equal to key and returns
// its value, or the zero Value when there is none.
func pairKey(actual reflect.Value, keys []reflect.Value, used []bool, key reflect.Value) reflect.Value {
	for i, candidate := range keys {
		if used[i] || !Equal(keyOf(candidate), keyOf(key)) {
			continue
		}

		used[i] = true

		return actual.MapIndex(candidate)
	}

	return reflect.Value{}
}

func (e *equalizer) sequenceEqual(actual, expected reflect.Value) bool {
	if actual.Len() != expected.Len() {
		return false
	}

	for i := range actual.Len() {
		if !e.equal(actual.Index(i), expected.Index(i)) {
			return false
		}
	}

	return true
}

// AssertionDiff renders a unified diff between expected and actual when either is
// composite. Scalars get no diff: the failure message already shows both.
func AssertionDiff(actual, expected any) string {
	actualKind := classify(deref(reflect.ValueOf(actual)))
	expectedKind := classify(deref(reflect.ValueOf(expected)))

	if actualKind != kindSequence && actualKind != kindMapping &&
		expectedKind != kindSequence && expectedKind != kindMapping {
		return ""
	}

	return textdiff.Unified("expected", "actual", pretty(expected)+"\n", pretty(actual)+"\n")
}

// classify maps a dereferenced value onto the closed kind set.
func classify(value reflect.Value) valueKind {
	if !value.IsValid() {
		return kindNil
	}

	switch value.Kind() { //nolint:exhaustive // default covers the scalar kinds
	case reflect.Slice, reflect.Array:
		return kindSequence
	case reflect.Map, reflect.Struct:
		return kindMapping
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		if value.IsNil() {
			return kindNil
		}

		return kindOpaque
	case reflect.Pointer, reflect.Interface:
		return kindNil // deref only leaves these behind when nil
	default:
		return kindPrimitive
	}
}

// deref follows pointers and interfaces to the value they hold. A pointer that
// leads back to itself is returned as is.
func deref(value reflect.Value) reflect.Value {
	var pointers []uintptr

	for value.IsValid() && (value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface) {
		if value.IsNil() {
			return value
		}

		if value.Kind() == reflect.Pointer {
			if slices.Contains(pointers, value.Pointer()) {
				return value
			}

			pointers = append(pointers, value.Pointer())
		}

		value = value.Elem()
	}

	return value
}

// Describe renders a value for a one-line failure message. Values that refer back
// to themselves are rendered with <cycle> markers instead of fmt's endless descent.
func Describe(value any) string {
	if s, ok := value.(string); ok {
		return fmt.Sprintf("%q", s)
	}

	compact := &printer{path: make(map[ref]bool), compact: true}
	compact.write(reflect.ValueOf(value), 0)

	if compact.cycled {
		return fmt.Sprintf("%T%s", value, compact.builder.String())
	}

	return fmt.Sprintf("%#v", value)
}

// fields returns a mapping's entries keyed by their printed key.
func fields(value reflect.Value) map[string]reflect.Value {
	out := make(map[string]reflect.Value)

	if value.Kind() == reflect.Struct {
		for i := range value.NumField() {
			out[value.Type().Field(i).Name] = value.Field(i)
		}

		return out
	}

	iter := value.MapRange()
	for iter.Next() {
		out[fmt.Sprint(keyOf(iter.Key()))] = iter.Value()
	}

	return out
}

func isNilValue(value reflect.Value) bool {
	value = deref(value)
	if !value.IsValid() {
		return true
	}

	switch value.Kind() { //nolint:exhaustive // only these kinds can be nil
	case reflect.Slice, reflect.Map, reflect.Func, reflect.Chan,
		reflect.Pointer, reflect.Interface, reflect.UnsafePointer:
		return value.IsNil()
	default:
		return false
	}
}

// keyOf reads a map key without requiring it to be exported.
func keyOf(key reflect.Value) any {
	key = deref(key)

	switch {
	case !key.IsValid():
		return nil
	case key.CanInterface():
		return key.Interface()
	default:
		return key.String()
	}
}

// pretty renders a value one element per line for diffing.
func pretty(value any) string {
	multiline := &printer{path: make(map[ref]bool)}
	multiline.write(reflect.ValueOf(value), 0)

	return multiline.builder.String()
}

//nolint:cyclop // one branch per value kind
func primitiveEqual(actual, expected reflect.Value) bool {
	switch {
	case isInt(actual) && isInt(expected):
		return actual.Int() == expected.Int()
	case isUint(actual) && isUint(expected):
		return actual.Uint() == expected.Uint()
	case isInt(actual) && isUint(expected):
		return actual.Int() >= 0 && uint64(actual.Int()) == expected.Uint()
	case isUint(actual) && isInt(expected):
		return expected.Int() >= 0 && actual.Uint() == uint64(expected.Int())
	case isNumber(actual) && isNumber(expected):
		return toFloat(actual) == toFloat(expected)
	case actual.Kind() == reflect.String && expected.Kind() == reflect.String:
		return actual.String() == expected.String()
	case actual.Kind() == reflect.Bool && expected.Kind() == reflect.Bool:
		return actual.Bool() == expected.Bool()
	case isComplex(actual) && isComplex(expected):
		return actual.Complex() == expected.Complex()
	default:
		return false
	}
}

func isComplex(value reflect.Value) bool {
	return value.Kind() == reflect.Complex64 || value.Kind() == reflect.Complex128
}

func isFloat(value reflect.Value) bool {
	return value.Kind() == reflect.Float32 || value.Kind() == reflect.Float64
}

func isInt(value reflect.Value) bool {
	switch value.Kind() { //nolint:exhaustive // only signed integers
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func isNumber(value reflect.Value) bool {
	return isInt(value) || isUint(value) || isFloat(value)
}

func isUint(value reflect.Value) bool {
	switch value.Kind() { //nolint:exhaustive // only unsigned integers
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

func sortedKeys(entries map[string]reflect.Value) []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func toFloat(value reflect.Value) float64 {
	switch {
	case isInt(value):
		return float64(value.Int())
	case isUint(value):
		return float64(value.Uint())
	default:
		return value.Float()
	}
}

// ref identifies a shared reference on the current printing path.
type ref struct {
	ptr uintptr
	typ reflect.Type
}

// printer renders values element by element, marking any reference already on the
// path from the root as <cycle>.
type printer struct {
	builder strings.Builder
	path    map[ref]bool
	compact bool
	cycled  bool
}

// enter records value on the path. It reports false, after writing <cycle>, when
// value is already there. leave must follow a true result.
func (p *printer) enter(value reflect.Value) bool {
	key, ok := refOf(value)
	if !ok {
		return true
	}

	if p.path[key] {
		p.cycled = true
		p.builder.WriteString("<cycle>")

		return false
	}

	p.path[key] = true

	return true
}

func (p *printer) leave(value reflect.Value) {
	if key, ok := refOf(value); ok {
		delete(p.path, key)
	}
}

func (p *printer) newline(depth int) {
	if p.compact {
		p.builder.WriteString(" ")

		return
	}

	p.builder.WriteString("\n" + strings.Repeat("  ", depth))
}

func (p *printer) write(value reflect.Value, depth int) {
	for value.IsValid() && (value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface) && !value.IsNil() {
		if !p.enter(value) {
			return
		}

		defer p.leave(value)

		value = value.Elem()
	}

	switch classify(value) {
	case kindNil:
		p.builder.WriteString("nil")
	case kindSequence:
		p.writeSequence(value, depth)
	case kindMapping:
		p.writeMapping(value, depth)
	case kindPrimitive:
		if value.Kind() == reflect.String {
			fmt.Fprintf(&p.builder, "%q", value.String())

			return
		}

		fmt.Fprint(&p.builder, value)
	case kindOpaque:
		fmt.Fprintf(&p.builder, "%s(%#x)", value.Type(), value.Pointer())
	}
}

func (p *printer) writeMapping(value reflect.Value, depth int) {
	if !p.enter(value) {
		return
	}
	defer p.leave(value)

	entries := displayEntries(value)

	p.builder.WriteString("{")

	for _, key := range sortedKeys(entries) {
		p.newline(depth + 1)
		p.builder.WriteString(key + ": ")
		p.write(entries[key], depth+1)
		p.builder.WriteString(",")
	}

	p.newline(depth)
	p.builder.WriteString("}")
}

func (p *printer) writeSequence(value reflect.Value, depth int) {
	if !p.enter(value) {
		return
	}
	defer p.leave(value)

	p.builder.WriteString("[")

	for i := range value.Len() {
		p.newline(depth + 1)
		p.write(value.Index(i), depth+1)
		p.builder.WriteString(",")
	}

	p.newline(depth)
	p.builder.WriteString("]")
}

// displayEntries keys a mapping's entries for printing: field names for structs,
// rendered keys for maps, so 1 and "1" stay distinct.
func displayEntries(value reflect.Value) map[string]reflect.Value {
	if value.Kind() != reflect.Map {
		return fields(value)
	}

	out := make(map[string]reflect.Value, value.Len())

	iter := value.MapRange()
	for iter.Next() {
		out[keyString(keyOf(iter.Key()))] = iter.Value()
	}

	return out
}

// keyString renders a map key. Keys are comparable, so fmt cannot loop on them.
func keyString(key any) string {
	if s, ok := key.(string); ok {
		return fmt.Sprintf("%q", s)
	}

	return fmt.Sprintf("%#v", key)
}

// refOf returns the identity of a value that can be shared: a non-nil pointer,
// map, or non-empty slice.
func refOf(value reflect.Value) (ref, bool) {
	switch value.Kind() { //nolint:exhaustive // only reference kinds are shared
	case reflect.Pointer, reflect.Map:
		if value.IsNil() {
			return ref{}, false
		}
	case reflect.Slice:
		if value.IsNil() || value.Len() == 0 {
			return ref{}, false
		}
	default:
		return ref{}, false
	}

	return ref{ptr: value.Pointer(), typ: value.Type()}, true
}
