// Package session provides player session tracking, room presence, and
// the per-player message outbox.
package session

import (
	"time"

	"github.com/cory-johannsen/emberfall/internal/game/item"
	"github.com/cory-johannsen/emberfall/internal/game/stats"
)

// PlayerSession tracks a connected player's in-memory combat state.
// Mutation happens only inside the orchestrator's critical section; the
// Manager guards its own indexes.
type PlayerSession struct {
	// UID is the unique player identifier (character ID as string).
	UID string
	// CharName is the character display name shown in-game.
	CharName string
	// CharacterID is the database ID of the character for persistence.
	CharacterID int64
	// RoomID is the current room the player occupies.
	RoomID string
	// Level is the character's current level.
	Level int
	// Experience is the accrued experience total.
	Experience int
	// Gold is the carried gold total.
	Gold int
	// HP and MaxHP are the character's hit points.
	HP    int
	MaxHP int
	// Mana and MaxMana are the character's mana pool.
	Mana    int
	MaxMana int
	// Stats is the base six-score block.
	Stats stats.Block
	// Effects holds timed stat modifiers; pruned each tick.
	Effects []stats.Effect
	// Weapon and Armor are equipped gear; nil when slots are empty.
	Weapon *item.Weapon
	Armor  *item.Armor
	// Ammo counts carried ammunition by kind ("arrow", "bolt").
	Ammo map[string]int
	// PartyID groups players for gold splits; empty means solo.
	PartyID string
}

// EffectiveStat returns the score with active effects applied.
//
// Postcondition: Returns >= 1.
func (p *PlayerSession) EffectiveStat(s stats.Score, now time.Time) int {
	return stats.Effective(p.Stats, p.Effects, s, now)
}

// ArmorClass returns the equipped armor's class, or 0 when unarmored.
func (p *PlayerSession) ArmorClass() int {
	if p.Armor == nil {
		return 0
	}
	return p.Armor.ArmorClass
}

// IsDead reports whether the player has zero or fewer hit points.
func (p *PlayerSession) IsDead() bool {
	return p.HP <= 0
}

// ApplyDamage subtracts damage, flooring HP at 0.
//
// Postcondition: HP >= 0.
func (p *PlayerSession) ApplyDamage(damage int) {
	if damage <= 0 {
		return
	}
	p.HP -= damage
	if p.HP < 0 {
		p.HP = 0
	}
}

// Respawn restores the player to full health at roomID. Experience and
// gold are untouched; death has no advancement penalty.
//
// Precondition: roomID must be non-empty. Callers move the session through
// Manager.MovePlayer; this only resets vitals and the local room field.
func (p *PlayerSession) Respawn(roomID string) {
	p.RoomID = roomID
	p.HP = p.MaxHP
	p.Mana = p.MaxMana
	p.Effects = nil
}

// AmmoCount returns the carried count for an ammunition kind.
func (p *PlayerSession) AmmoCount(kind string) int {
	return p.Ammo[kind]
}

// ConsumeAmmo removes one round of the given kind.
//
// Postcondition: Returns false (no mutation) when none is carried.
func (p *PlayerSession) ConsumeAmmo(kind string) bool {
	if p.Ammo[kind] <= 0 {
		return false
	}
	p.Ammo[kind]--
	return true
}

// AddAmmo adds n rounds of the given kind.
func (p *PlayerSession) AddAmmo(kind string, n int) {
	if n <= 0 || kind == "" {
		return
	}
	if p.Ammo == nil {
		p.Ammo = make(map[string]int)
	}
	p.Ammo[kind] += n
}
