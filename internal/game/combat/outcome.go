package combat

import "github.com/cory-johannsen/emberfall/internal/game/dice"

// Outcome is the result of resolving a single attack attempt.
type Outcome int

// Attack outcomes, in resolution order.
const (
	OutcomeMiss Outcome = iota
	OutcomeDodge
	OutcomeDeflect
	OutcomeHit
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeMiss:
		return "miss"
	case OutcomeDodge:
		return "dodge"
	case OutcomeDeflect:
		return "deflect"
	case OutcomeHit:
		return "hit"
	default:
		return "unknown"
	}
}

// Outcome resolution constants.
const (
	// BaseHitChance is the to-hit probability when attacker and defender
	// dexterity are equal.
	BaseHitChance = 0.75
	// HitPerDexPoint shifts the to-hit probability per point of dexterity
	// difference.
	HitPerDexPoint = 0.02
	// MinHitChance / MaxHitChance bound the to-hit probability.
	MinHitChance = 0.05
	MaxHitChance = 0.95

	// BaseDodgeChance is the floor dodge probability.
	BaseDodgeChance = 0.05
	// DodgePerDexPoint adds dodge probability per defender dexterity
	// point above 10.
	DodgePerDexPoint = 0.01
	// MaxDodgeChance caps dodge.
	MaxDodgeChance = 0.25

	// DeflectPerArmorPoint adds deflect probability per point of armor class.
	DeflectPerArmorPoint = 0.03
	// MaxDeflectChance caps deflection.
	MaxDeflectChance = 0.30

	// CrossRoomHitPenalty is subtracted from the resolved to-hit chance
	// when firing into an adjacent room.
	CrossRoomHitPenalty = 0.20
)

// HitChance returns the probability an attack connects, before dodge and
// deflection checks.
//
// Postcondition: Result is in [MinHitChance, MaxHitChance].
func HitChance(attackerDex, defenderDex int) float64 {
	return clamp(MinHitChance, MaxHitChance,
		BaseHitChance+HitPerDexPoint*float64(attackerDex-defenderDex))
}

// DodgeChance returns the defender's probability of dodging a connecting
// attack.
//
// Postcondition: Result is in [0, MaxDodgeChance].
func DodgeChance(defenderDex int) float64 {
	bonus := 0.0
	if defenderDex > 10 {
		bonus = DodgePerDexPoint * float64(defenderDex-10)
	}
	return clamp(0, MaxDodgeChance, BaseDodgeChance+bonus)
}

// DeflectChance returns the probability the defender's armor turns a
// connecting, undodged attack entirely.
//
// Postcondition: Result is in [0, MaxDeflectChance].
func DeflectChance(armorClass int) float64 {
	return clamp(0, MaxDeflectChance, DeflectPerArmorPoint*float64(armorClass))
}

// ResolveAttack resolves one attack attempt with up to three ordered
// randomness draws: the to-hit check first, then dodge, then deflection.
// The order is part of the contract — scripted sources observe exactly
// this sequence.
//
// hitModifier is added to the resolved to-hit chance after clamping
// (cross-room shots pass -CrossRoomHitPenalty; melee passes 0).
//
// Precondition: src must be non-nil.
func ResolveAttack(attackerDex, defenderDex, armorClass int, hitModifier float64, src dice.Source) Outcome {
	if !rollChance(HitChance(attackerDex, defenderDex)+hitModifier, src) {
		return OutcomeMiss
	}
	if rollChance(DodgeChance(defenderDex), src) {
		return OutcomeDodge
	}
	if rollChance(DeflectChance(armorClass), src) {
		return OutcomeDeflect
	}
	return OutcomeHit
}
