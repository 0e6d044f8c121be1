package combat

import "github.com/cory-johannsen/emberfall/internal/game/dice"

// Damage calculation constants.
const (
	// CritChance is the probability any physical attack is a critical hit.
	CritChance = 0.05
	// DefaultCritMultiplier scales critical physical damage.
	DefaultCritMultiplier = 2.0
	// SpellCritChance is the probability a damaging spell crits.
	SpellCritChance = 0.03
	// SpellCritMultiplier scales critical spell damage.
	SpellCritMultiplier = 1.5
	// CrossRoomDamageFactor scales ranged damage dealt into an adjacent room.
	CrossRoomDamageFactor = 0.9
	// MaxArmorReduction caps armor damage reduction at 80%.
	MaxArmorReduction = 0.8
	// ArmorReductionPerPoint is the damage reduction per point of armor.
	ArmorReductionPerPoint = 0.1
)

// Result describes one resolved damage roll before armor reduction.
type Result struct {
	// Amount is the damage dealt; always >= 1.
	Amount int
	// Critical reports whether the crit roll succeeded.
	Critical bool
	// Type is "physical" or "magical".
	Type string
}

// NaturalAttack describes a mob's innate attack. Damage (a dice
// expression) takes precedence; otherwise the [Min, Max] range is used;
// a zero value falls back to 1d4.
type NaturalAttack struct {
	Damage string
	Min    int
	Max    int
}

// roll returns the natural attack's damage contribution.
func (n NaturalAttack) roll(src dice.Source) int {
	switch {
	case n.Damage != "":
		return dice.RollDamage(n.Damage, src)
	case n.Min > 0 && n.Max >= n.Min:
		return dice.RollRange(n.Min, n.Max, src)
	default:
		return dice.RollRange(1, 4, src)
	}
}

// Melee computes melee damage: strength/2 base plus the weapon dice, the
// natural attack, or an unarmed 1..3. A ranged weapon swung in melee
// contributes only half its dice.
//
// Precondition: src must be non-nil; critMultiplier <= 0 selects
// DefaultCritMultiplier.
// Postcondition: Amount >= 1.
func Melee(strength int, weaponDamage string, weaponRanged bool, natural *NaturalAttack, critMultiplier float64, src dice.Source) Result {
	base := strength / 2

	var total int
	switch {
	case weaponDamage != "":
		wd := dice.RollDamage(weaponDamage, src)
		if weaponRanged {
			// Clubbing someone with a bow.
			wd /= 2
			if wd < 1 {
				wd = 1
			}
		}
		total = base + wd
	case natural != nil:
		total = base + natural.roll(src)
	default:
		total = base + dice.RollRange(1, 3, src)
	}

	return critAndFloor(total, CritChance, critMultiplier, "physical", src)
}

// Ranged computes ranged damage: dexterity/2 base plus the weapon dice
// (1..3 when no weapon data is present).
//
// Postcondition: Amount >= 1.
func Ranged(dexterity int, weaponDamage string, critMultiplier float64, src dice.Source) Result {
	base := dexterity / 2

	var total int
	if weaponDamage != "" {
		total = base + dice.RollDamage(weaponDamage, src)
	} else {
		total = base + dice.RollRange(1, 3, src)
	}

	return critAndFloor(total, CritChance, critMultiplier, "physical", src)
}

// Spell computes offensive spell damage: intelligence/2 base plus
// spellLevel*3 plus 1d6, with the lower spell crit rate and multiplier.
//
// Postcondition: Amount >= 1.
func Spell(intelligence, spellLevel int, src dice.Source) Result {
	total := intelligence/2 + spellLevel*3 + dice.RollRange(1, 6, src)
	return critAndFloor(total, SpellCritChance, SpellCritMultiplier, "magical", src)
}

// critAndFloor applies the crit roll and the minimum-1 floor.
func critAndFloor(total int, critChance, critMultiplier float64, typ string, src dice.Source) Result {
	if critMultiplier <= 0 {
		critMultiplier = DefaultCritMultiplier
	}
	crit := rollChance(critChance, src)
	if crit {
		total = int(float64(total) * critMultiplier)
	}
	if total < 1 {
		total = 1
	}
	return Result{Amount: total, Critical: crit, Type: typ}
}

// ApplyArmor reduces damage by 10% per point of armor, capped at 80%.
//
// Postcondition: Returns >= 1 for any damage >= 1.
func ApplyArmor(damage, armorValue int) int {
	reduction := ArmorReductionPerPoint * float64(armorValue)
	if reduction > MaxArmorReduction {
		reduction = MaxArmorReduction
	}
	out := int(float64(damage) * (1 - reduction))
	if out < 1 {
		out = 1
	}
	return out
}

// CrossRoomDamage scales a damage amount for a shot into an adjacent room.
//
// Postcondition: Returns >= 1 for any damage >= 1.
func CrossRoomDamage(damage int) int {
	out := int(float64(damage) * CrossRoomDamageFactor)
	if out < 1 {
		out = 1
	}
	return out
}
