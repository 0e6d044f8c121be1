package ability

import (
	"math"
	"sync"
	"time"

	"github.com/cory-johannsen/emberfall/internal/game/dice"
)

// chanceScale is the resolution of use-chance rolls.
const chanceScale = 10000

// Use describes a chosen ability activation. The caller rolls the damage
// dice and delivers the result; a use always lands (breath weapons and
// kin bypass the attack outcome resolver) but is still reduced by armor.
type Use struct {
	Spec Spec
	// Damage is the rolled damage before armor reduction.
	Damage int
}

// Engine tracks per-mob per-ability cooldowns.
// Cooldowns are polled against caller-supplied times; no timers run.
// Safe for concurrent use.
type Engine struct {
	mu sync.Mutex
	// readyAt maps mobID → ability name → next allowed use.
	readyAt map[string]map[string]time.Time
}

// NewEngine creates an empty ability Engine.
func NewEngine() *Engine {
	return &Engine{readyAt: make(map[string]map[string]time.Time)}
}

// Choose walks specs in order and returns the first ability that is off
// cooldown and passes its independent use-chance roll, rolling its damage
// and starting its cooldown.
//
// Precondition: every spec must have passed Normalize; src must be non-nil.
// Postcondition: Returns (use, true) with use.Damage >= 1, or (Use{}, false)
// when nothing fires. Cooldown state changes only for the returned ability.
func (e *Engine) Choose(mobID string, specs []Spec, now time.Time, src dice.Source) (Use, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, spec := range specs {
		if e.onCooldownLocked(mobID, spec.Name, now) {
			continue
		}
		if src.Intn(chanceScale) >= int(math.Round(spec.UseChance*chanceScale)) {
			continue
		}

		dmg := dice.RollDamage(spec.Damage, src)
		if dmg < 1 {
			dmg = 1
		}
		e.setCooldownLocked(mobID, spec.Name, now.Add(spec.Cooldown))
		return Use{Spec: spec, Damage: dmg}, true
	}
	return Use{}, false
}

// Ready reports whether the named ability is off cooldown for mobID at now.
func (e *Engine) Ready(mobID, name string, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.onCooldownLocked(mobID, name, now)
}

// Forget drops all cooldown state for mobID. Called when the mob dies.
func (e *Engine) Forget(mobID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.readyAt, mobID)
}

func (e *Engine) onCooldownLocked(mobID, name string, now time.Time) bool {
	byName, ok := e.readyAt[mobID]
	if !ok {
		return false
	}
	return byName[name].After(now)
}

func (e *Engine) setCooldownLocked(mobID, name string, readyAt time.Time) {
	byName, ok := e.readyAt[mobID]
	if !ok {
		byName = make(map[string]time.Time)
		e.readyAt[mobID] = byName
	}
	byName[name] = readyAt
}
