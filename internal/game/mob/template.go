// Package mob provides mob template definitions, live instance management,
// and the lair and wandering spawners that populate the world.
package mob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/emberfall/internal/game/ability"
	"github.com/cory-johannsen/emberfall/internal/game/loot"
)

// Type classifies a mob for stat randomization and flavor.
type Type string

// Mob types.
const (
	TypeHumanoid Type = "humanoid"
	TypeUndead   Type = "undead"
	TypeAnimal   Type = "animal"
)

// DefaultRespawnDelay is the lair respawn delay when neither the room nor
// the template overrides it.
const DefaultRespawnDelay = 300 * time.Second

// Spellcaster holds the optional casting configuration of a template.
type Spellcaster struct {
	// Skill is the spell-skill stat feeding mana size and failure chance.
	Skill int `yaml:"skill"`
	// Spells lists spell definition IDs the mob knows.
	Spells []string `yaml:"spells"`
	// HealThreshold is the health fraction below which the mob prefers a
	// healing spell. Zero means use the configured default.
	HealThreshold float64 `yaml:"heal_threshold"`
}

// Template defines a reusable mob archetype loaded from YAML.
type Template struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Level       int    `yaml:"level"`
	Type        Type   `yaml:"type"`
	Health      int    `yaml:"health"`
	// Damage is the natural-attack dice expression (e.g. "1d6+2").
	// Alternatively DamageMin/DamageMax give a flat range. Both empty/zero
	// means an unarmed 1-3 swing.
	Damage    string `yaml:"damage"`
	DamageMin int    `yaml:"damage_min"`
	DamageMax int    `yaml:"damage_max"`
	// Armor is the natural armor class (0 = unarmored).
	Armor   int  `yaml:"armor"`
	Hostile bool `yaml:"hostile"`
	// WeaponID and ArmorID equip a humanoid at spawn; both drop on death.
	WeaponID string `yaml:"weapon"`
	ArmorID  string `yaml:"armor_item"`
	// GoldMin/GoldMax bound the gold reward roll.
	GoldMin int `yaml:"gold_min"`
	GoldMax int `yaml:"gold_max"`
	// Experience is the base XP value of the mob.
	Experience int `yaml:"experience"`
	// RespawnDelay overrides DefaultRespawnDelay for lair spawns of this
	// template (duration string). Empty means the default.
	RespawnDelay string `yaml:"respawn_delay"`
	// Loot is the chance-based drop table; nil means no rolled drops.
	Loot *loot.Table `yaml:"loot"`
	// Spellcaster is non-nil when the mob casts spells.
	Spellcaster *Spellcaster `yaml:"spellcaster"`
	// Abilities lists special attacks (breath weapons and the like).
	Abilities []ability.Spec `yaml:"abilities"`
	// Wandering marks the template as eligible for area spawns.
	Wandering bool `yaml:"wandering"`
	// Areas lists the wandering area IDs this template may spawn into.
	Areas []string `yaml:"areas"`
	// SpawnWeight weights the wandering template pool. Zero means 1.
	SpawnWeight int `yaml:"spawn_weight"`
}

// Validate checks that the template satisfies basic invariants and
// normalizes embedded ability specs.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff the template is well-formed; on success
// every ability spec has been normalized.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("mob template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("mob template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("mob template %q: level must be >= 1", t.ID)
	}
	switch t.Type {
	case TypeHumanoid, TypeUndead, TypeAnimal:
	case "":
		t.Type = TypeHumanoid
	default:
		return fmt.Errorf("mob template %q: unknown type %q", t.ID, t.Type)
	}
	if t.Health < 1 {
		return fmt.Errorf("mob template %q: health must be >= 1", t.ID)
	}
	if t.Armor < 0 {
		return fmt.Errorf("mob template %q: armor must be >= 0", t.ID)
	}
	if t.DamageMin < 0 || t.DamageMin > t.DamageMax {
		return fmt.Errorf("mob template %q: damage range [%d, %d] is invalid", t.ID, t.DamageMin, t.DamageMax)
	}
	if t.GoldMin < 0 || t.GoldMin > t.GoldMax {
		return fmt.Errorf("mob template %q: gold range [%d, %d] is invalid", t.ID, t.GoldMin, t.GoldMax)
	}
	if t.Experience < 0 {
		return fmt.Errorf("mob template %q: experience must be >= 0", t.ID)
	}
	if t.RespawnDelay != "" {
		if _, err := time.ParseDuration(t.RespawnDelay); err != nil {
			return fmt.Errorf("mob template %q: respawn_delay %q is not a valid duration: %w", t.ID, t.RespawnDelay, err)
		}
	}
	if t.WeaponID != "" && t.Type != TypeHumanoid {
		return fmt.Errorf("mob template %q: only humanoids equip weapons", t.ID)
	}
	if t.ArmorID != "" && t.Type != TypeHumanoid {
		return fmt.Errorf("mob template %q: only humanoids equip armor", t.ID)
	}
	if t.Loot != nil {
		if err := t.Loot.Validate(); err != nil {
			return fmt.Errorf("mob template %q: %w", t.ID, err)
		}
	}
	if t.Spellcaster != nil {
		if t.Spellcaster.Skill < 0 {
			return fmt.Errorf("mob template %q: spellcaster skill must be >= 0", t.ID)
		}
		if len(t.Spellcaster.Spells) == 0 {
			return fmt.Errorf("mob template %q: spellcaster must know at least one spell", t.ID)
		}
		if t.Spellcaster.HealThreshold < 0 || t.Spellcaster.HealThreshold > 1 {
			return fmt.Errorf("mob template %q: heal_threshold must be in [0, 1]", t.ID)
		}
	}
	for i := range t.Abilities {
		if err := t.Abilities[i].Normalize(); err != nil {
			return fmt.Errorf("mob template %q: ability[%d]: %w", t.ID, i, err)
		}
	}
	if t.Wandering && len(t.Areas) == 0 {
		return fmt.Errorf("mob template %q: wandering template must list at least one area", t.ID)
	}
	if t.SpawnWeight < 0 {
		return fmt.Errorf("mob template %q: spawn_weight must be >= 0", t.ID)
	}
	return nil
}

// ParsedRespawnDelay returns the template's respawn delay, falling back to
// DefaultRespawnDelay when unset.
//
// Precondition: t must have passed Validate.
func (t *Template) ParsedRespawnDelay() time.Duration {
	if t.RespawnDelay == "" {
		return DefaultRespawnDelay
	}
	d, err := time.ParseDuration(t.RespawnDelay)
	if err != nil {
		return DefaultRespawnDelay
	}
	return d
}

// LoadTemplateFromBytes parses a single mob template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing mob template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading mob dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

// TemplatesByID indexes templates by ID, erroring on duplicates.
func TemplatesByID(templates []*Template) (map[string]*Template, error) {
	byID := make(map[string]*Template, len(templates))
	for _, t := range templates {
		if _, exists := byID[t.ID]; exists {
			return nil, fmt.Errorf("duplicate mob template ID %q", t.ID)
		}
		byID[t.ID] = t
	}
	return byID, nil
}
