// Package fundamentals is the smallest thing worth testing: two arithmetic helpers.
package fundamentals

// Subtract returns a - b.
func Subtract(a, b int) int {
	return a - b
}

// Sum returns a + b.
func Sum(a, b int) int {
	return a + b
}
