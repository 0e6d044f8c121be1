package mob

import (
	"github.com/cory-johannsen/emberfall/internal/game/ability"
	"github.com/cory-johannsen/emberfall/internal/game/combat"
	"github.com/cory-johannsen/emberfall/internal/game/dice"
	"github.com/cory-johannsen/emberfall/internal/game/item"
	"github.com/cory-johannsen/emberfall/internal/game/stats"
)

// Origin records how an instance entered the world.
type Origin string

// Instance origins.
const (
	OriginLair      Origin = "lair"
	OriginWandering Origin = "wandering"
	OriginSummoned  Origin = "summoned"
)

// Instance is a live mob occupying a room.
type Instance struct {
	// ID uniquely identifies this runtime instance.
	ID string
	// TemplateID is the source template's ID.
	TemplateID string
	// Name is copied from the template for display.
	Name string
	// Description is copied from the template.
	Description string
	// RoomID is the room this instance currently occupies.
	RoomID string
	// Origin records how the mob entered the world.
	Origin Origin
	// AreaID is the wandering area the mob is confined to; empty for
	// lair and summoned mobs.
	AreaID string
	// Level is copied from the template.
	Level int
	// Type is copied from the template.
	Type Type
	// Hostile is copied from the template.
	Hostile bool
	// HP and MaxHP are the rolled hit points.
	HP    int
	MaxHP int
	// Stats is the randomized six-score block.
	Stats stats.Block
	// ArmorClass is natural armor plus equipped armor.
	ArmorClass int
	// Natural is the natural-attack damage spec used when unarmed.
	Natural combat.NaturalAttack
	// Weapon and Armor are equipped gear (humanoids only; nil otherwise).
	Weapon *item.Weapon
	Armor  *item.Armor
	// WeaponID and ArmorID name the equipped gear for guaranteed drops.
	WeaponID string
	ArmorID  string
	// GoldReward is the rolled gold value plus anything absorbed from
	// mob-vs-mob kills.
	GoldReward int
	// ExperienceReward is the template XP value plus absorbed XP.
	ExperienceReward int
	// Spellcaster config copied from the template; nil for non-casters.
	Spellcaster *Spellcaster
	// Abilities is the normalized ability list from the template.
	Abilities []ability.Spec
	// SummonOwnerID is the player who summoned this mob; empty otherwise.
	SummonOwnerID string
}

// statVariance is the ± spread applied to each rolled score.
const statVariance = 2

// rewardJitterPct is the ± percentage applied to HP and gold rolls.
const rewardJitterPct = 20

// NewInstance creates a live mob from a template, placed in roomID.
// Stats are rolled around 8+level with type adjustments; HP and gold are
// jittered ±20% around the template values. Humanoids equip their
// template weapon and armor, resolved through the catalog.
//
// Precondition: id and roomID must be non-empty; tmpl must have passed
// Validate; src must be non-nil. catalog may be nil (no gear resolved).
func NewInstance(id string, tmpl *Template, roomID string, origin Origin, catalog *item.Catalog, src dice.Source) *Instance {
	inst := &Instance{
		ID:               id,
		TemplateID:       tmpl.ID,
		Name:             tmpl.Name,
		Description:      tmpl.Description,
		RoomID:           roomID,
		Origin:           origin,
		Level:            tmpl.Level,
		Type:             tmpl.Type,
		Hostile:          tmpl.Hostile,
		MaxHP:            jitter(tmpl.Health, src),
		Stats:            rollStats(tmpl.Level, tmpl.Type, src),
		ArmorClass:       tmpl.Armor,
		GoldReward:       jitterRange(tmpl.GoldMin, tmpl.GoldMax, src),
		ExperienceReward: tmpl.Experience,
		Spellcaster:      tmpl.Spellcaster,
		Abilities:        tmpl.Abilities,
		Natural: combat.NaturalAttack{
			Damage: tmpl.Damage,
			Min:    tmpl.DamageMin,
			Max:    tmpl.DamageMax,
		},
	}
	inst.HP = inst.MaxHP

	if tmpl.Type == TypeHumanoid && catalog != nil {
		if w, ok := catalog.Weapon(tmpl.WeaponID); ok {
			inst.Weapon = w
			inst.WeaponID = tmpl.WeaponID
		}
		if a, ok := catalog.Armor(tmpl.ArmorID); ok {
			inst.Armor = a
			inst.ArmorID = tmpl.ArmorID
			inst.ArmorClass += a.ArmorClass
		}
	}
	return inst
}

// rollStats produces the randomized stat block: every score starts at
// 8+level with a ±2 roll, then the mob type skews the result. Undead are
// tough but dull; animals are quick but nearly mindless.
func rollStats(level int, typ Type, src dice.Source) stats.Block {
	roll := func() int {
		v := 8 + level + src.Intn(2*statVariance+1) - statVariance
		if v < 1 {
			v = 1
		}
		return v
	}
	b := stats.Block{
		Strength:     roll(),
		Dexterity:    roll(),
		Constitution: roll(),
		Intelligence: roll(),
		Wisdom:       roll(),
		Charisma:     roll(),
	}
	switch typ {
	case TypeUndead:
		b.Constitution += 2
		b.Intelligence = floorScore(b.Intelligence - 3)
		b.Charisma = floorScore(b.Charisma - 3)
	case TypeAnimal:
		b.Dexterity += 2
		b.Intelligence = 1 + src.Intn(2)
	}
	return b
}

func floorScore(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// jitter randomizes v by ±20%, flooring at 1 for positive inputs.
func jitter(v int, src dice.Source) int {
	if v <= 0 {
		return 0
	}
	out := v * (100 - rewardJitterPct + src.Intn(2*rewardJitterPct+1)) / 100
	if out < 1 {
		out = 1
	}
	return out
}

// jitterRange rolls a value in [min, max], then jitters it ±20%.
func jitterRange(min, max int, src dice.Source) int {
	if max <= 0 {
		return 0
	}
	return jitter(dice.RollRange(min, max, src), src)
}

// IsDead reports whether the instance has zero or fewer hit points.
func (i *Instance) IsDead() bool {
	return i.HP <= 0
}

// HealthFraction returns HP/MaxHP in [0, 1].
func (i *Instance) HealthFraction() float64 {
	if i.MaxHP <= 0 {
		return 0
	}
	f := float64(i.HP) / float64(i.MaxHP)
	if f < 0 {
		return 0
	}
	return f
}

// Absorb adds a slain victim's reward value to this mob. A player who
// later kills it collects the accumulated total.
func (i *Instance) Absorb(gold, experience int) {
	if gold > 0 {
		i.GoldReward += gold
	}
	if experience > 0 {
		i.ExperienceReward += experience
	}
}

// IsSpellcaster reports whether the mob carries casting config.
func (i *Instance) IsSpellcaster() bool {
	return i.Spellcaster != nil && len(i.Spellcaster.Spells) > 0
}

// HealthDescription returns a visible health state string for examine output.
//
// Postcondition: Returns a non-empty string.
func (i *Instance) HealthDescription() string {
	if i.HP <= 0 {
		return "dead"
	}
	pct := i.HealthFraction()
	switch {
	case pct >= 1.0:
		return "unharmed"
	case pct >= 0.85:
		return "barely scratched"
	case pct >= 0.60:
		return "lightly wounded"
	case pct >= 0.40:
		return "moderately wounded"
	case pct >= 0.20:
		return "heavily wounded"
	default:
		return "critically wounded"
	}
}
