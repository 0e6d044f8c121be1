package combat

import (
	"sync"
	"time"
)

// Attack economy constants.
const (
	// BaseAttacks is the attack budget at level 1.
	BaseAttacks = 2
	// LevelsPerExtraAttack grants one extra attack per full 5 levels past 1.
	LevelsPerExtraAttack = 5
	// FatigueDuration is the standard recovery window after the attack
	// budget is exhausted. Abilities and overleveled spells impose the
	// same (or longer) window through ForceFatigue.
	FatigueDuration = 15 * time.Second
)

// MaxAttacks returns the attack budget for a combatant of the given level.
//
// Postcondition: Returns >= BaseAttacks; level 1 → 2, level 6 → 3,
// level 11 → 4.
func MaxAttacks(level int) int {
	if level < 1 {
		level = 1
	}
	return BaseAttacks + (level-1)/LevelsPerExtraAttack
}

// slot is the per-combatant attack budget state.
//
// Invariant: a zero fatiguedUntil means the combatant is merely being
// tracked, not fatigued.
type slot struct {
	remaining     int
	fatiguedUntil time.Time
}

// AttackEconomy tracks per-combatant attack budgets and fatigue windows.
// All expiry is lazy: every method takes the caller's notion of now and
// settles outstanding deadlines before answering. No timers run.
// Safe for concurrent use.
type AttackEconomy struct {
	mu    sync.Mutex
	slots map[string]*slot
}

// NewAttackEconomy creates an empty AttackEconomy.
func NewAttackEconomy() *AttackEconomy {
	return &AttackEconomy{slots: make(map[string]*slot)}
}

// refreshLocked settles the slot for id at now, creating it on first sight.
// A fatigue window that has elapsed restores the full attack budget.
//
// Precondition: caller holds e.mu.
func (e *AttackEconomy) refreshLocked(id string, level int, now time.Time) *slot {
	s, ok := e.slots[id]
	if !ok {
		s = &slot{remaining: MaxAttacks(level)}
		e.slots[id] = s
		return s
	}
	if !s.fatiguedUntil.IsZero() && !s.fatiguedUntil.After(now) {
		s.remaining = MaxAttacks(level)
		s.fatiguedUntil = time.Time{}
	}
	return s
}

// AttacksRemaining returns the combatant's current attack budget.
//
// Postcondition: An unknown combatant reports the full budget for its level.
func (e *AttackEconomy) AttacksRemaining(id string, level int, now time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refreshLocked(id, level, now).remaining
}

// TryAttack consumes one attack from the combatant's budget.
// Consuming the final attack starts the FatigueDuration window.
//
// Postcondition: Returns false without mutating state when the combatant
// is fatigued or out of attacks.
func (e *AttackEconomy) TryAttack(id string, level int, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.refreshLocked(id, level, now)
	if s.fatiguedUntil.After(now) {
		return false
	}
	if s.remaining <= 0 {
		return false
	}
	s.remaining--
	if s.remaining == 0 {
		s.fatiguedUntil = now.Add(FatigueDuration)
	}
	return true
}

// IsFatigued reports whether the combatant is inside a fatigue window at now.
func (e *AttackEconomy) IsFatigued(id string, level int, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refreshLocked(id, level, now).fatiguedUntil.After(now)
}

// FatigueRemaining returns how much of the fatigue window is left at now.
//
// Postcondition: Returns 0 for a combatant that is not fatigued.
func (e *AttackEconomy) FatigueRemaining(id string, level int, now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.refreshLocked(id, level, now)
	if !s.fatiguedUntil.After(now) {
		return 0
	}
	return s.fatiguedUntil.Sub(now)
}

// ForceFatigue empties the combatant's budget and imposes a fatigue window
// of d. Used by special abilities and overleveled spellcasting, which
// exhaust the combatant regardless of remaining attacks.
//
// Postcondition: An already-later deadline is kept; fatigue never shortens.
func (e *AttackEconomy) ForceFatigue(id string, now time.Time, d time.Duration) {
	if d <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.slots[id]
	if !ok {
		s = &slot{}
		e.slots[id] = s
	}
	s.remaining = 0
	deadline := now.Add(d)
	if deadline.After(s.fatiguedUntil) {
		s.fatiguedUntil = deadline
	}
}

// Forget drops all tracking for id. Called on death or disconnect.
func (e *AttackEconomy) Forget(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.slots, id)
}
