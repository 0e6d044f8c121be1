// Package spell provides spell definitions, per-caster mana and cooldown
// state, and the casting rules for spellcasting mobs.
package spell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/emberfall/internal/game/dice"
)

// Kind classifies a spell's effect.
type Kind string

// Spell kinds.
const (
	Offensive Kind = "offensive"
	Healing   Kind = "healing"
)

// Definition describes one castable spell loaded from YAML.
type Definition struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Kind Kind   `yaml:"kind"`
	// MinLevel is the intended caster level; casting above one's level
	// raises the failure chance and extends the fatigue window.
	MinLevel int `yaml:"min_level"`
	// ManaCost is deducted when the cast is committed, fizzle or not.
	ManaCost int `yaml:"mana_cost"`
	// Heal is the dice expression for healing spells (default "2d8").
	Heal string `yaml:"heal"`
	// Verb is the message verb ("hurls a firebolt at").
	Verb string `yaml:"verb"`
	// RawCooldown is the duration string from YAML (e.g. "6s").
	RawCooldown string `yaml:"cooldown"`
	// Cooldown is the parsed per-caster reuse delay, set by Normalize.
	Cooldown time.Duration `yaml:"-"`
}

// Normalize fills defaults and validates the definition.
//
// Postcondition: Returns nil iff ID is non-empty, Kind is offensive or
// healing, MinLevel >= 1, ManaCost >= 0, and dice/cooldown strings parse.
func (d *Definition) Normalize() error {
	if d.ID == "" {
		return fmt.Errorf("spell: id must not be empty")
	}
	if d.Name == "" {
		d.Name = d.ID
	}
	if d.Kind != Offensive && d.Kind != Healing {
		return fmt.Errorf("spell %q: kind must be offensive or healing, got %q", d.ID, d.Kind)
	}
	if d.MinLevel < 1 {
		d.MinLevel = 1
	}
	if d.ManaCost < 0 {
		return fmt.Errorf("spell %q: mana_cost must be >= 0", d.ID)
	}
	if d.Kind == Healing {
		if d.Heal == "" {
			d.Heal = "2d8"
		}
		if _, err := dice.Parse(d.Heal); err != nil {
			return fmt.Errorf("spell %q: heal: %w", d.ID, err)
		}
	}
	if d.Verb == "" {
		if d.Kind == Healing {
			d.Verb = "murmurs a healing prayer"
		} else {
			d.Verb = "hurls raw magic at"
		}
	}
	if d.RawCooldown != "" {
		cd, err := time.ParseDuration(d.RawCooldown)
		if err != nil {
			return fmt.Errorf("spell %q: cooldown %q is not a valid duration: %w", d.ID, d.RawCooldown, err)
		}
		if cd < 0 {
			return fmt.Errorf("spell %q: cooldown must be >= 0", d.ID)
		}
		d.Cooldown = cd
	}
	return nil
}

// Library indexes spell definitions by ID.
type Library struct {
	spells map[string]*Definition
}

// libraryFile is the YAML shape of a spell file.
type libraryFile struct {
	Spells []*Definition `yaml:"spells"`
}

// NewLibrary creates an empty Library.
func NewLibrary() *Library {
	return &Library{spells: make(map[string]*Definition)}
}

// LoadBytes merges one YAML spell document into the library.
//
// Postcondition: All definitions are normalized; duplicates are an error.
func (l *Library) LoadBytes(data []byte) error {
	var file libraryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing spell YAML: %w", err)
	}
	for _, d := range file.Spells {
		if err := d.Normalize(); err != nil {
			return err
		}
		if _, exists := l.spells[d.ID]; exists {
			return fmt.Errorf("duplicate spell ID %q", d.ID)
		}
		l.spells[d.ID] = d
	}
	return nil
}

// LoadDir merges all *.yaml spell files under dir.
func (l *Library) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading spell dir %q: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		if err := l.LoadBytes(data); err != nil {
			return fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return nil
}

// Get returns the definition with the given ID.
//
// Postcondition: Returns (def, true) if found, or (nil, false) otherwise.
func (l *Library) Get(id string) (*Definition, bool) {
	d, ok := l.spells[id]
	return d, ok
}

// Resolve maps a list of spell IDs to definitions, erroring on unknowns.
func (l *Library) Resolve(ids []string) ([]*Definition, error) {
	out := make([]*Definition, 0, len(ids))
	for _, id := range ids {
		d, ok := l.spells[id]
		if !ok {
			return nil, fmt.Errorf("unknown spell ID %q", id)
		}
		out = append(out, d)
	}
	return out, nil
}
