// Package item provides weapon and armor definitions loaded from YAML
// catalogs.
package item

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/emberfall/internal/game/dice"
)

// Weapon defines an equippable weapon.
type Weapon struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Damage is a dice expression, e.g. "1d8+1".
	Damage string `yaml:"damage"`
	// Ranged marks bows, crossbows, and thrown weapons. Ranged weapons
	// key damage on dexterity and can fire into adjacent rooms.
	Ranged bool `yaml:"ranged"`
	// AmmoType is the ammunition consumed per shot ("arrow", "bolt").
	// Empty for melee weapons.
	AmmoType string `yaml:"ammo_type"`
	// Value is the base gold value.
	Value int `yaml:"value"`
}

// Validate checks weapon invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty and Damage
// parses as a dice expression.
func (w *Weapon) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("weapon: id must not be empty")
	}
	if w.Name == "" {
		return fmt.Errorf("weapon %q: name must not be empty", w.ID)
	}
	if w.Damage != "" {
		if _, err := dice.Parse(w.Damage); err != nil {
			return fmt.Errorf("weapon %q: damage: %w", w.ID, err)
		}
	}
	if w.Ranged && w.AmmoType == "" {
		return fmt.Errorf("weapon %q: ranged weapons must declare ammo_type", w.ID)
	}
	return nil
}

// Armor defines an equippable armor piece.
type Armor struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// ArmorClass feeds both deflection chance and damage reduction.
	ArmorClass int `yaml:"armor_class"`
	// Value is the base gold value.
	Value int `yaml:"value"`
}

// Validate checks armor invariants.
func (a *Armor) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("armor: id must not be empty")
	}
	if a.Name == "" {
		return fmt.Errorf("armor %q: name must not be empty", a.ID)
	}
	if a.ArmorClass < 0 {
		return fmt.Errorf("armor %q: armor_class must be >= 0", a.ID)
	}
	return nil
}

// Catalog indexes all loaded weapons and armor by ID.
type Catalog struct {
	weapons map[string]*Weapon
	armor   map[string]*Armor
}

// catalogFile is the YAML shape of an item catalog file.
type catalogFile struct {
	Weapons []*Weapon `yaml:"weapons"`
	Armor   []*Armor  `yaml:"armor"`
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		weapons: make(map[string]*Weapon),
		armor:   make(map[string]*Armor),
	}
}

// LoadBytes merges one YAML catalog document into the catalog.
//
// Precondition: data must be valid YAML for a catalogFile.
// Postcondition: All entries are validated; duplicates are an error.
func (c *Catalog) LoadBytes(data []byte) error {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing item catalog YAML: %w", err)
	}
	for _, w := range file.Weapons {
		if err := w.Validate(); err != nil {
			return err
		}
		if _, exists := c.weapons[w.ID]; exists {
			return fmt.Errorf("duplicate weapon ID %q", w.ID)
		}
		c.weapons[w.ID] = w
	}
	for _, a := range file.Armor {
		if err := a.Validate(); err != nil {
			return err
		}
		if _, exists := c.armor[a.ID]; exists {
			return fmt.Errorf("duplicate armor ID %q", a.ID)
		}
		c.armor[a.ID] = a
	}
	return nil
}

// LoadDir merges all *.yaml catalog files under dir.
//
// Precondition: dir must be a readable directory.
func (c *Catalog) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading item dir %q: %w", dir, err)
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
		if err := c.LoadBytes(data); err != nil {
			return fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return nil
}

// Weapon returns the weapon with the given ID.
//
// Postcondition: Returns (weapon, true) if found, or (nil, false) otherwise.
func (c *Catalog) Weapon(id string) (*Weapon, bool) {
	w, ok := c.weapons[id]
	return w, ok
}

// Armor returns the armor with the given ID.
func (c *Catalog) Armor(id string) (*Armor, bool) {
	a, ok := c.armor[id]
	return a, ok
}
