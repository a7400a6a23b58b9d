package game

import "math/rand/v2"

// Random is the source of secrets and hint order. *rand.Rand satisfies it.
type Random interface {
	IntN(n int) int
	Perm(n int) []int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int   { return rand.IntN(n) }
func (globalRandom) Perm(n int) []int { return rand.Perm(n) }

// DefaultRandom returns a source backed by the goroutine-safe top-level math/rand/v2 functions
func DefaultRandom() Random {
	return globalRandom{}
}
