// Package character defines the persistent player character model.
package character

import (
	"time"

	"github.com/cory-johannsen/emberfall/internal/game/stats"
)

// Starting pools for a freshly created character. Constitution and
// intelligence scale the respective maximums.
const (
	baseHP   = 10
	baseMana = 50
)

// Character is a player character's durable state, persisted between
// sessions. Combat state (active effects, cooldowns, threat) is
// deliberately not part of the model.
//
// ID is set by the persistence layer; zero means unsaved.
type Character struct {
	ID int64

	Name       string
	Level      int
	Experience int
	Gold       int

	Location string // current room ID
	Stats    stats.Block

	MaxHP       int
	CurrentHP   int
	MaxMana     int
	CurrentMana int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a level-1 character with pools derived from its stat block.
//
// Precondition: name and location must be non-empty.
// Postcondition: CurrentHP == MaxHP and CurrentMana == MaxMana.
func New(name, location string, block stats.Block) *Character {
	hp := MaxHPFor(1, block)
	mana := MaxManaFor(1, block)
	return &Character{
		Name:        name,
		Level:       1,
		Location:    location,
		Stats:       block,
		MaxHP:       hp,
		CurrentHP:   hp,
		MaxMana:     mana,
		CurrentMana: mana,
	}
}

// MaxHPFor returns the hit point maximum for a level and stat block:
// baseHP plus constitution per level.
func MaxHPFor(level int, block stats.Block) int {
	if level < 1 {
		level = 1
	}
	return baseHP + block.Get(stats.Constitution)*level
}

// MaxManaFor returns the mana maximum for a level and stat block:
// baseMana plus 10 per level plus half of intelligence.
func MaxManaFor(level int, block stats.Block) int {
	if level < 1 {
		level = 1
	}
	return baseMana + 10*level + block.Get(stats.Intelligence)/2
}

// IsDead reports whether the character is out of hit points.
func (c *Character) IsDead() bool {
	return c.CurrentHP <= 0
}
