// Package ability provides mob special attacks: typed ability kinds,
// YAML specs, and the per-mob cooldown engine.
//
// Ability dispatch is a closed registry over Kind values resolved at
// template load time; an unrecognized kind is a content error, not a
// silent no-op.
package ability

import (
	"fmt"
	"time"
)

// Kind identifies a special ability implementation.
type Kind string

// Registered ability kinds.
const (
	// BreathWeapon is a cone attack that always lands, bypassing the
	// attack outcome resolver, and exhausts the user.
	BreathWeapon Kind = "breath_weapon"
)

// knownKinds is the closed set of ability kinds the engine implements.
var knownKinds = map[Kind]bool{
	BreathWeapon: true,
}

// Defaults applied by Spec.Normalize.
const (
	DefaultDamage    = "3d6"
	DefaultUseChance = 0.3
	DefaultCooldown  = 10 * time.Second
	DefaultVerb      = "breathes fire at"
)

// Spec describes one ability attached to a mob template.
type Spec struct {
	// Kind selects the ability implementation.
	Kind Kind `yaml:"kind"`
	// Name is the display name (defaults to the kind).
	Name string `yaml:"name"`
	// Damage is the dice expression rolled on use.
	Damage string `yaml:"damage"`
	// DamageType flavors the damage ("fire", "acid", "frost").
	DamageType string `yaml:"damage_type"`
	// Verb is the message verb ("breathes fire at", "spits acid at").
	Verb string `yaml:"verb"`
	// RawCooldown is the duration string from YAML (e.g. "10s").
	RawCooldown string `yaml:"cooldown"`
	// Cooldown is the parsed minimum time between uses, set by Normalize.
	Cooldown time.Duration `yaml:"-"`
	// UseChance is the per-tick probability a ready ability fires.
	UseChance float64 `yaml:"use_chance"`
}

// Normalize fills unset fields with defaults and validates the spec.
//
// Postcondition: Returns nil iff Kind is registered, RawCooldown parses
// as a duration (or is empty), and UseChance is in (0, 1].
func (s *Spec) Normalize() error {
	if !knownKinds[s.Kind] {
		return fmt.Errorf("ability: unknown kind %q", s.Kind)
	}
	if s.Name == "" {
		s.Name = string(s.Kind)
	}
	if s.Damage == "" {
		s.Damage = DefaultDamage
	}
	if s.Verb == "" {
		s.Verb = DefaultVerb
	}
	if s.DamageType == "" {
		s.DamageType = "fire"
	}
	s.Cooldown = DefaultCooldown
	if s.RawCooldown != "" {
		d, err := time.ParseDuration(s.RawCooldown)
		if err != nil {
			return fmt.Errorf("ability %q: cooldown %q is not a valid duration: %w", s.Name, s.RawCooldown, err)
		}
		if d < 0 {
			return fmt.Errorf("ability %q: cooldown must be >= 0", s.Name)
		}
		s.Cooldown = d
	}
	if s.UseChance == 0 {
		s.UseChance = DefaultUseChance
	}
	if s.UseChance < 0 || s.UseChance > 1 {
		return fmt.Errorf("ability %q: use_chance must be in (0, 1], got %f", s.Name, s.UseChance)
	}
	return nil
}
