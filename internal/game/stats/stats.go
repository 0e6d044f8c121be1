// Package stats provides six-score stat blocks and timed stat effects
// shared by players and mobs.
package stats

import "time"

// DefaultScore is assumed for any score a content file leaves unset.
const DefaultScore = 10

// Score identifies one of the six core attributes.
type Score string

// The six core attributes.
const (
	Strength     Score = "strength"
	Dexterity    Score = "dexterity"
	Constitution Score = "constitution"
	Intelligence Score = "intelligence"
	Wisdom       Score = "wisdom"
	Charisma     Score = "charisma"
)

// Block holds the six base attribute scores of a combatant.
// A zero value for any score means "unset" and resolves to DefaultScore.
type Block struct {
	Strength     int `yaml:"strength"`
	Dexterity    int `yaml:"dexterity"`
	Constitution int `yaml:"constitution"`
	Intelligence int `yaml:"intelligence"`
	Wisdom       int `yaml:"wisdom"`
	Charisma     int `yaml:"charisma"`
}

// Get returns the base value for s, resolving unset scores to DefaultScore.
//
// Postcondition: Returns >= 1 for any recognized score.
func (b Block) Get(s Score) int {
	var v int
	switch s {
	case Strength:
		v = b.Strength
	case Dexterity:
		v = b.Dexterity
	case Constitution:
		v = b.Constitution
	case Intelligence:
		v = b.Intelligence
	case Wisdom:
		v = b.Wisdom
	case Charisma:
		v = b.Charisma
	}
	if v <= 0 {
		return DefaultScore
	}
	return v
}

// Effect is a timed additive modifier to one attribute, granted by spells
// or items.
//
// Invariant: an Effect with a zero ExpiresAt never expires.
type Effect struct {
	// Name is the display name of the effect (e.g. "bull's strength").
	Name string
	// Score is the attribute the effect modifies.
	Score Score
	// Amount is the additive bonus; may be negative for debuffs.
	Amount int
	// ExpiresAt is the wall-clock expiry; zero means permanent.
	ExpiresAt time.Time
}

// Active reports whether the effect is still live at now.
func (e Effect) Active(now time.Time) bool {
	return e.ExpiresAt.IsZero() || e.ExpiresAt.After(now)
}

// Effective returns the effective value of score s at now: the base score
// plus every unexpired effect targeting s. Expired effects contribute
// nothing but are not removed; callers prune with PruneEffects.
//
// Postcondition: Returns at least 1.
func Effective(b Block, effects []Effect, s Score, now time.Time) int {
	v := b.Get(s)
	for _, e := range effects {
		if e.Score == s && e.Active(now) {
			v += e.Amount
		}
	}
	if v < 1 {
		return 1
	}
	return v
}

// PruneEffects returns effects with every expired entry removed.
//
// Postcondition: All returned effects satisfy Active(now).
func PruneEffects(effects []Effect, now time.Time) []Effect {
	out := effects[:0]
	for _, e := range effects {
		if e.Active(now) {
			out = append(out, e)
		}
	}
	return out
}
