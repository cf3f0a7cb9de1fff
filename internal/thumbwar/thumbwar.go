// Package thumbwar holds the demo code the bundled suite exercises: two arithmetic
// helpers and a thumb war whose winner-picking step is slow and random, so tests
// substitute it.
package thumbwar

import (
	"math/rand/v2"
)

// GetWinner picks the winner of one round, or "" for a tie. It stands in for an
// expensive network call; tests replace it.
//
//nolint:gochecknoglobals // substitution target
var GetWinner = func(player1, player2 string) string {
	switch n := rand.Float64(); { //nolint:gosec // game randomness, not security
	case n < 1.0/3:
		return player1
	case n < 2.0/3:
		return player2
	default:
		return ""
	}
}

// Subtract returns a - b.
func Subtract(a, b int) int {
	return a - b
}

// Sum returns a + b.
func Sum(a, b int) int {
	return a + b
}

// ThumbWar plays rounds until one player has won twice and returns that player.
func ThumbWar(player1, player2 string) string {
	const numberToWin = 2

	player1Wins, player2Wins := 0, 0

	for player1Wins < numberToWin && player2Wins < numberToWin {
		switch GetWinner(player1, player2) {
		case player1:
			player1Wins++
		case player2:
			player2Wins++
		}
	}

	if player1Wins > player2Wins {
		return player1
	}

	return player2
}
