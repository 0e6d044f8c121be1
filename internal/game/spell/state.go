package spell

import "time"

// Mana pool constants.
const (
	// BaseManaPool is the mana floor for any spellcaster.
	BaseManaPool = 50
	// ManaPerLevel grows the pool with caster level.
	ManaPerLevel = 10
	// ManaRegenPerSecond is the lazy time-based regeneration rate.
	ManaRegenPerSecond = 5
)

// MaxMana returns the mana pool for a caster of the given level and
// spell skill: 50 + 10*level + skill/2.
//
// Postcondition: Returns >= BaseManaPool.
func MaxMana(level, skill int) int {
	if level < 0 {
		level = 0
	}
	if skill < 0 {
		skill = 0
	}
	return BaseManaPool + ManaPerLevel*level + skill/2
}

// CasterState holds one caster's mana pool, per-spell cooldowns, and the
// shared spell-fatigue deadline. Regeneration, cooldown expiry, and
// fatigue all settle lazily against the caller's notion of now. Not safe
// for concurrent use; the orchestrator serializes access.
type CasterState struct {
	Mana    int
	MaxMana int

	level        int
	lastRegen    time.Time
	cooldowns    map[string]time.Time
	fatiguedTill time.Time
}

// NewCasterState creates a full-mana state for a caster of the given
// level and spell skill.
//
// Precondition: now must not be zero.
func NewCasterState(level, skill int, now time.Time) *CasterState {
	max := MaxMana(level, skill)
	return &CasterState{
		Mana:      max,
		MaxMana:   max,
		level:     level,
		lastRegen: now,
		cooldowns: make(map[string]time.Time),
	}
}

// Regen applies time-based mana regeneration for the full seconds elapsed
// since the last regen, capped at MaxMana. Sub-second remainders carry
// forward.
func (c *CasterState) Regen(now time.Time) {
	if c.lastRegen.IsZero() {
		c.lastRegen = now
		return
	}
	secs := int(now.Sub(c.lastRegen) / time.Second)
	if secs <= 0 {
		return
	}
	c.Mana += secs * ManaRegenPerSecond
	if c.Mana > c.MaxMana {
		c.Mana = c.MaxMana
	}
	c.lastRegen = c.lastRegen.Add(time.Duration(secs) * time.Second)
}

// CanCast reports whether def is affordable, off cooldown, and not
// blocked by spell fatigue at now. Fatigue is a single deadline shared by
// every spell the caster knows.
//
// Precondition: def must be non-nil.
func (c *CasterState) CanCast(def *Definition, now time.Time) bool {
	c.Regen(now)
	if c.fatiguedTill.After(now) {
		return false
	}
	if c.Mana < def.ManaCost {
		return false
	}
	return !c.cooldowns[def.ID].After(now)
}

// Commit deducts def's mana cost, starts its cooldown, and imposes spell
// fatigue for Fatigue(level, def.MinLevel). Commit happens BEFORE the
// failure roll: a fizzled cast still spends all three.
//
// Precondition: CanCast(def, now) must be true.
// Postcondition: Mana >= 0; CanCast returns false for every spell until
// the fatigue deadline passes.
func (c *CasterState) Commit(def *Definition, now time.Time) {
	c.Mana -= def.ManaCost
	if c.Mana < 0 {
		c.Mana = 0
	}
	if def.Cooldown > 0 {
		c.cooldowns[def.ID] = now.Add(def.Cooldown)
	}
	c.fatiguedTill = now.Add(Fatigue(c.level, def.MinLevel))
}
