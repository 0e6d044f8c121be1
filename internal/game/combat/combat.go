// Package combat implements the attack economy, attack outcome
// resolution, and damage calculation for the Emberfall combat engine.
//
// All randomness flows through dice.Source so tests can script every
// roll. Probability checks resolve at 1/10000 granularity.
package combat

import (
	"math"

	"github.com/cory-johannsen/emberfall/internal/game/dice"
)

// chanceScale is the resolution of probability rolls.
const chanceScale = 10000

// rollChance returns true with probability p.
//
// Precondition: src must be non-nil.
// Postcondition: p <= 0 never succeeds; p >= 1 always succeeds.
func rollChance(p float64, src dice.Source) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Intn(chanceScale) < int(math.Round(p*chanceScale))
}

// clamp bounds v to [lo, hi].
func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
