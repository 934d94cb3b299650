// Package dice rolls Liar's Dice hands.
package dice

import "slices"

// Faces is the number of sides on every die.
const Faces = 6

// Source is the randomness a Roller draws from. *randutil.Locked and
// *rand.Rand both satisfy it.
type Source interface {
	IntN(n int) int
}

// Roller produces a hand of dice.
type Roller interface {
	Roll(count int) []int
}

// RandRoller rolls uniform six-sided dice from a Source.
type RandRoller struct {
	src Source
}

// New creates a roller. The source must be safe for concurrent use if the
// roller is shared between rooms.
func New(src Source) *RandRoller {
	return &RandRoller{src: src}
}

// Roll returns count faces in ascending order. Counts of zero or less yield
// an empty hand.
func (r *RandRoller) Roll(count int) []int {
	if count <= 0 {
		return []int{}
	}

	hand := make([]int, count)
	for i := range hand {
		hand[i] = r.src.IntN(Faces) + 1
	}
	slices.Sort(hand)
	return hand
}

// Count returns how many dice in hand show face.
func Count(hand []int, face int) int {
	n := 0
	for _, d := range hand {
		if d == face {
			n++
		}
	}
	return n
}
