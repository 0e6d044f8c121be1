package spell

import (
	"math"
	"time"

	"github.com/cory-johannsen/emberfall/internal/game/dice"
)

// Casting rule constants.
const (
	// CastChance is the probability a spellcasting mob with a target
	// casts instead of making a basic attack.
	CastChance = 0.70
	// DefaultHealThreshold is the health fraction below which a caster
	// prefers healing itself.
	DefaultHealThreshold = 0.3

	// Failure chance model.
	BaseFailureChance  = 0.10
	FailurePerLevelGap = 0.15
	IntFailureRelief   = 0.02
	SkillFailureRelief = 0.01
	MinFailureChance   = 0.05
	MaxFailureChance   = 0.95

	// FatiguePerLevelGap extends the post-cast fatigue window for every
	// level the spell exceeds the caster.
	FatiguePerLevelGap = 15 * time.Second
	// MinFatigue is the floor fatigue after any cast.
	MinFatigue = 15 * time.Second
)

// chanceScale is the resolution of probability rolls.
const chanceScale = 10000

// FailureChance returns the probability a cast fizzles:
//
//	clamp(0.05, 0.95, 0.10 + 0.15*levelGap - 0.02*((INT-10)/2) - 0.01*((skill-50)/10))
//
// where levelGap = max(0, minLevel-casterLevel) and the divisions truncate.
//
// Postcondition: Result is in [MinFailureChance, MaxFailureChance].
func FailureChance(casterLevel, minLevel, intelligence, skill int) float64 {
	gap := minLevel - casterLevel
	if gap < 0 {
		gap = 0
	}
	p := BaseFailureChance +
		FailurePerLevelGap*float64(gap) -
		IntFailureRelief*float64((intelligence-10)/2) -
		SkillFailureRelief*float64((skill-50)/10)
	if p < MinFailureChance {
		p = MinFailureChance
	}
	if p > MaxFailureChance {
		p = MaxFailureChance
	}
	return p
}

// Fatigue returns the post-cast fatigue window: the standard window, or
// 15s per level the spell exceeds the caster, whichever is longer.
//
// Postcondition: Returns >= MinFatigue.
func Fatigue(casterLevel, minLevel int) time.Duration {
	gap := minLevel - casterLevel
	if gap <= 1 {
		return MinFatigue
	}
	return time.Duration(gap) * FatiguePerLevelGap
}

// RollCast reports whether a spellcasting mob opts to cast this tick.
//
// Precondition: src must be non-nil.
func RollCast(src dice.Source) bool {
	return src.Intn(chanceScale) < int(math.Round(CastChance*chanceScale))
}

// RollFailure reports whether a committed cast fizzles.
func RollFailure(casterLevel, minLevel, intelligence, skill int, src dice.Source) bool {
	p := FailureChance(casterLevel, minLevel, intelligence, skill)
	return src.Intn(chanceScale) < int(math.Round(p*chanceScale))
}

// Choose selects the spell to cast: a ready, affordable healing spell
// when the caster's health fraction is below healThreshold, otherwise a
// uniform random pick among ready, affordable offensive spells.
//
// Precondition: every def must be normalized; state must be non-nil;
// src must be non-nil; healThreshold <= 0 selects DefaultHealThreshold.
// Postcondition: Returns nil when nothing is castable — the caller falls
// through to a basic attack.
func Choose(defs []*Definition, state *CasterState, healthFrac, healThreshold float64, now time.Time, src dice.Source) *Definition {
	if healThreshold <= 0 {
		healThreshold = DefaultHealThreshold
	}

	if healthFrac < healThreshold {
		for _, d := range defs {
			if d.Kind == Healing && state.CanCast(d, now) {
				return d
			}
		}
	}

	var offensive []*Definition
	for _, d := range defs {
		if d.Kind == Offensive && state.CanCast(d, now) {
			offensive = append(offensive, d)
		}
	}
	if len(offensive) == 0 {
		return nil
	}
	return offensive[src.Intn(len(offensive))]
}

// RollHeal rolls def's healing dice.
//
// Precondition: def.Kind == Healing and def has been normalized.
// Postcondition: Returns >= 1.
func RollHeal(def *Definition, src dice.Source) int {
	h := dice.RollDamage(def.Heal, src)
	if h < 1 {
		h = 1
	}
	return h
}
