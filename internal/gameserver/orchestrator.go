// Package gameserver hosts the combat orchestrator: the single-threaded
// resolution core that drives mob AI, player attack handling, and the
// simulation tick.
package gameserver

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/emberfall/internal/config"
	"github.com/cory-johannsen/emberfall/internal/game/ability"
	"github.com/cory-johannsen/emberfall/internal/game/combat"
	"github.com/cory-johannsen/emberfall/internal/game/dice"
	"github.com/cory-johannsen/emberfall/internal/game/loot"
	"github.com/cory-johannsen/emberfall/internal/game/mob"
	"github.com/cory-johannsen/emberfall/internal/game/session"
	"github.com/cory-johannsen/emberfall/internal/game/spell"
	"github.com/cory-johannsen/emberfall/internal/game/stats"
	"github.com/cory-johannsen/emberfall/internal/game/threat"
	"github.com/cory-johannsen/emberfall/internal/game/world"
)

// chanceScale is the resolution of probability rolls.
const chanceScale = 10000

// Deps bundles the collaborators an Orchestrator resolves combat against.
// All fields are required unless noted otherwise.
type Deps struct {
	Config    config.CombatConfig
	Logger    *zap.Logger
	Source    dice.Source
	World     *world.Manager
	Sessions  *session.Manager
	Mobs      *mob.Manager
	Outbox    *session.Outbox
	Economy   *combat.AttackEconomy
	Threat    *threat.Tracker
	Ledger    *loot.DamageLedger
	Spells    *spell.Library
	Abilities *ability.Engine
	Templates map[string]*mob.Template
	// Lairs may be nil (no lair respawns).
	Lairs *mob.LairManager
	// Wander may be nil (no wandering spawns).
	Wander *mob.WanderSpawner
}

// Orchestrator owns combat resolution. A single mutex serialises every
// state transition — player commands and the AI tick alike — so an attack
// is always resolved against a consistent world. Messages produced inside
// the critical section queue on the outbox and are flushed by the caller
// after the lock is released.
type Orchestrator struct {
	mu sync.Mutex

	cfg       config.CombatConfig
	log       *zap.Logger
	src       dice.Source
	world     *world.Manager
	sessions  *session.Manager
	mobs      *mob.Manager
	outbox    *session.Outbox
	economy   *combat.AttackEconomy
	threat    *threat.Tracker
	ledger    *loot.DamageLedger
	spells    *spell.Library
	abilities *ability.Engine
	templates map[string]*mob.Template
	lairs     *mob.LairManager
	wander    *mob.WanderSpawner
	ammo      *SpentAmmoRegistry

	casters       map[string]*spell.CasterState // mobID → state
	lastManaRegen time.Time
}

// NewOrchestrator creates an Orchestrator over the given collaborators.
//
// Precondition: every non-optional Deps field must be non-nil.
func NewOrchestrator(d Deps) *Orchestrator {
	return &Orchestrator{
		cfg:       d.Config,
		log:       d.Logger,
		src:       d.Source,
		world:     d.World,
		sessions:  d.Sessions,
		mobs:      d.Mobs,
		outbox:    d.Outbox,
		economy:   d.Economy,
		threat:    d.Threat,
		ledger:    d.Ledger,
		spells:    d.Spells,
		abilities: d.Abilities,
		templates: d.Templates,
		lairs:     d.Lairs,
		wander:    d.Wander,
		ammo:      NewSpentAmmoRegistry(),
		casters:   make(map[string]*spell.CasterState),
	}
}

// Ammo returns the spent-ammunition registry.
func (o *Orchestrator) Ammo() *SpentAmmoRegistry {
	return o.ammo
}

// Tick advances the simulation one step: effect pruning, player mana
// regeneration, threat expiry, wandering spawns and drift, lair respawns,
// and the mob AI pass.
//
// Postcondition: All state transitions for this tick happened inside one
// critical section; pending messages are queued, not sent.
func (o *Orchestrator) Tick(now time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.regenPlayers(now)
	o.threat.Prune(now)
	if o.wander != nil {
		o.wander.Tick(now, o.sessions.AnyInRoom)
	}
	if o.lairs != nil {
		o.lairs.Tick(now, o.mobs)
	}
	o.processMobAI(now)
}

// regenPlayers prunes expired effects and applies lazy mana regeneration
// to every connected session.
func (o *Orchestrator) regenPlayers(now time.Time) {
	secs := 0
	if !o.lastManaRegen.IsZero() {
		secs = int(now.Sub(o.lastManaRegen) / time.Second)
	}
	if secs > 0 || o.lastManaRegen.IsZero() {
		o.lastManaRegen = now
	}

	for _, p := range o.sessions.All() {
		p.Effects = stats.PruneEffects(p.Effects, now)
		if secs > 0 && p.Mana < p.MaxMana {
			p.Mana += secs * spell.ManaRegenPerSecond
			if p.Mana > p.MaxMana {
				p.Mana = p.MaxMana
			}
		}
	}
}

// casterStateFor returns the mob's caster state, creating it on first use.
func (o *Orchestrator) casterStateFor(inst *mob.Instance, now time.Time) *spell.CasterState {
	state, ok := o.casters[inst.ID]
	if !ok {
		skill := 0
		if inst.Spellcaster != nil {
			skill = inst.Spellcaster.Skill
		}
		state = spell.NewCasterState(inst.Level, skill, now)
		o.casters[inst.ID] = state
	}
	return state
}

// rollChance returns true with probability p.
func (o *Orchestrator) rollChance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return o.src.Intn(chanceScale) < int(math.Round(p*chanceScale))
}

// queueRoom queues line for every player in roomID except exceptUID.
func (o *Orchestrator) queueRoom(roomID, exceptUID, line string) {
	for _, p := range o.sessions.PlayersInRoom(roomID) {
		if p.UID == exceptUID {
			continue
		}
		o.outbox.Queue(p.UID, line)
	}
}

// forgetMob drops every piece of per-mob combat state.
func (o *Orchestrator) forgetMob(id string) {
	o.threat.Clear(id)
	o.economy.Forget(id)
	o.abilities.Forget(id)
	o.ledger.Drop(id)
	delete(o.casters, id)
}
