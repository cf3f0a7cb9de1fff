// Package match provides matchers for argument and value positions in imprun's
// ToEqual and ToHaveBeenCalledWith family.
// Equal, HaveLen, and Satisfy share names with gomega's matchers, so import this
// package by name when gomega is dot-imported. Gomega matchers work in the same
// positions:
//
//	imprun.Expect(getWinner).ToHaveBeenCalledWith(HavePrefix("Die"), match.BeAny)
package match

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/toejough/imprun/internal/core"
)

// Matcher defines the interface for flexible value matching.
// Compatible with gomega.GomegaMatcher via duck typing - any type
// implementing Match and FailureMessage will work.
type Matcher = core.Matcher

// BeAny is a matcher that matches any value.
// Useful when you don't care about a particular argument.
//
//nolint:gochecknoglobals // Intentional exported constant-like value
var BeAny Matcher = core.Any()

// Equal returns a matcher that checks structural equality with expected, the same
// comparison ToEqual performs.
func Equal(expected any) Matcher {
	return equalMatcher{expected: expected}
}

// HaveLen returns a matcher for strings, slices, arrays, maps, and channels of
// length n.
func HaveLen(n int) Matcher {
	return haveLenMatcher{length: n}
}

// Satisfy returns a matcher that uses a predicate function to check for a match.
// The predicate should return nil if the value matches, or an error describing
// the mismatch if it does not.
//
// Example:
//
//	imprun.Expect(add).ToHaveBeenCalledWith(Satisfy(func(x int) error {
//	    if x < 0 { return fmt.Errorf("expected positive, got %d", x) }
//	    return nil
//	}), BeAny)
func Satisfy[T any](predicate func(T) error) Matcher {
	return core.Satisfies(predicate)
}

// unexported variables.
var (
	errNoLength = errors.New("value has no length")
)

type equalMatcher struct {
	expected any
}

func (m equalMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("expected %#v to equal %#v", actual, m.expected)
}

func (m equalMatcher) Match(actual any) (bool, error) {
	return core.Equal(actual, m.expected), nil
}

type haveLenMatcher struct {
	length int
}

func (m haveLenMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("expected %#v to have length %d", actual, m.length)
}

func (m haveLenMatcher) Match(actual any) (bool, error) {
	value := reflect.ValueOf(actual)

	switch value.Kind() { //nolint:exhaustive // only kinds with a length
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return value.Len() == m.length, nil
	default:
		return false, fmt.Errorf("%w: %T", errNoLength, actual)
	}
}
