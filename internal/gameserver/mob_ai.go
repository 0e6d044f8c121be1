package gameserver

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/emberfall/internal/game/combat"
	"github.com/cory-johannsen/emberfall/internal/game/mob"
	"github.com/cory-johannsen/emberfall/internal/game/session"
	"github.com/cory-johannsen/emberfall/internal/game/spell"
	"github.com/cory-johannsen/emberfall/internal/game/stats"
)

// processMobAI runs one decision pass over every live mob. A panic or
// error while acting for one mob is logged and contained; the pass
// continues with the next mob.
//
// Precondition: caller holds o.mu.
func (o *Orchestrator) processMobAI(now time.Time) {
	for _, inst := range o.mobs.All() {
		o.actMob(inst, now)
	}
}

// actMob runs the decision ladder for one mob: dead and fatigued mobs sit
// out, wounded wanderers flee, mobs with a present target act, mobs with
// a remembered target pursue, and idle hostiles acquire.
func (o *Orchestrator) actMob(inst *mob.Instance, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("mob AI panic",
				zap.String("mob", inst.ID),
				zap.Any("panic", r),
			)
		}
	}()

	if inst.IsDead() {
		return
	}
	if o.economy.IsFatigued(inst.ID, inst.Level, now) {
		return
	}

	if o.tryFlee(inst, now) {
		return
	}

	rec, hasGrudge := o.threat.Target(inst.ID, now)
	var player *session.PlayerSession
	var victim *mob.Instance
	if hasGrudge {
		if p, ok := o.sessions.Get(rec.TargetID); ok && !p.IsDead() {
			player = p
		} else if m, ok := o.mobs.Get(rec.TargetID); ok && !m.IsDead() {
			victim = m
		} else {
			o.threat.Clear(inst.ID)
		}
	}

	if player == nil && victim == nil && (inst.Hostile || inst.Origin == mob.OriginSummoned) {
		player, victim = o.acquireTarget(inst, now)
	}

	switch {
	case player != nil:
		if player.RoomID == inst.RoomID {
			o.threat.Touch(inst.ID, player.UID, player.RoomID, now)
			o.mobAct(inst, player, now)
			return
		}
		o.threat.UpdateRoom(inst.ID, player.RoomID, now)
		o.pursue(inst, player.RoomID, now)
	case victim != nil:
		if victim.RoomID == inst.RoomID {
			o.threat.Touch(inst.ID, victim.ID, victim.RoomID, now)
			o.mobAttackMob(inst, victim, now)
			return
		}
		o.threat.UpdateRoom(inst.ID, victim.RoomID, now)
		o.pursue(inst, victim.RoomID, now)
	}
}

// tryFlee moves a badly wounded wanderer one room away from the fight.
//
// Postcondition: Returns true when the mob fled (its turn is spent).
func (o *Orchestrator) tryFlee(inst *mob.Instance, now time.Time) bool {
	if inst.Origin != mob.OriginWandering {
		return false
	}
	if inst.HealthFraction() >= o.cfg.FleeThreshold {
		return false
	}

	exits := o.world.MobExits(inst.RoomID)
	if len(exits) == 0 {
		return false
	}
	exit := exits[o.src.Intn(len(exits))]
	from := inst.RoomID
	if err := o.mobs.Move(inst.ID, exit.TargetRoom); err != nil {
		return false
	}
	o.threat.Clear(inst.ID)
	o.queueRoom(from, "", fmt.Sprintf("The %s flees %s!", inst.Name, exit.Direction))
	return true
}

// acquireTarget picks a victim in the mob's room and opens a grudge.
// Hostile mobs choose uniformly among living players and summoned
// creatures; summoned creatures only ever attack hostile mobs, so they
// never turn on their owner's party. Fellow hostiles are never targets.
func (o *Orchestrator) acquireTarget(inst *mob.Instance, now time.Time) (*session.PlayerSession, *mob.Instance) {
	var players []*session.PlayerSession
	if inst.Origin != mob.OriginSummoned {
		for _, p := range o.sessions.PlayersInRoom(inst.RoomID) {
			if !p.IsDead() {
				players = append(players, p)
			}
		}
	}

	var rivals []*mob.Instance
	for _, m := range o.mobs.InstancesInRoom(inst.RoomID) {
		if m.ID == inst.ID || m.IsDead() {
			continue
		}
		if inst.Origin == mob.OriginSummoned {
			if m.Hostile && m.Origin != mob.OriginSummoned {
				rivals = append(rivals, m)
			}
		} else if m.Origin == mob.OriginSummoned {
			rivals = append(rivals, m)
		}
	}

	total := len(players) + len(rivals)
	if total == 0 {
		return nil, nil
	}
	pick := o.src.Intn(total)
	if pick < len(players) {
		target := players[pick]
		o.threat.Touch(inst.ID, target.UID, target.RoomID, now)
		o.outbox.Queue(target.UID, fmt.Sprintf("The %s turns on you!", inst.Name))
		return target, nil
	}
	victim := rivals[pick-len(players)]
	o.threat.Touch(inst.ID, victim.ID, victim.RoomID, now)
	o.queueRoom(inst.RoomID, "", fmt.Sprintf("The %s rounds on the %s!", inst.Name, victim.Name))
	return nil, victim
}

// mobAttackMob resolves one melee swing between mobs. The victim picks up
// a retaliation grudge either way. On a kill the survivor absorbs the
// victim's gold and experience rewards; damage credit from any players
// still pays out through the ledger.
func (o *Orchestrator) mobAttackMob(att, vic *mob.Instance, now time.Time) {
	if !o.economy.TryAttack(att.ID, att.Level, now) {
		return
	}

	o.threat.Touch(vic.ID, att.ID, att.RoomID, now)

	outcome := combat.ResolveAttack(
		att.Stats.Get(stats.Dexterity),
		vic.Stats.Get(stats.Dexterity),
		vic.ArmorClass,
		0,
		o.src,
	)
	if outcome != combat.OutcomeHit {
		o.queueRoom(att.RoomID, "", fmt.Sprintf("The %s lunges at the %s and misses.", att.Name, vic.Name))
		return
	}

	var weaponDamage string
	var weaponRanged bool
	if att.Weapon != nil {
		weaponDamage = att.Weapon.Damage
		weaponRanged = att.Weapon.Ranged
	}
	result := combat.Melee(
		att.Stats.Get(stats.Strength),
		weaponDamage, weaponRanged, &att.Natural,
		o.cfg.CritMultiplier, o.src,
	)
	reduced := combat.ApplyArmor(result.Amount, vic.ArmorClass)
	vic.HP -= reduced
	if vic.HP < 0 {
		vic.HP = 0
	}
	o.queueRoom(att.RoomID, "", fmt.Sprintf("The %s savages the %s for %d damage.", att.Name, vic.Name, reduced))

	if vic.IsDead() {
		att.Absorb(vic.GoldReward, vic.ExperienceReward)
		o.killMob(vic, nil, now)
	}
}

// mobAct chooses the mob's action against a target in its room: a spell
// for casters most of the time, otherwise a ready special ability,
// otherwise a basic attack.
func (o *Orchestrator) mobAct(inst *mob.Instance, target *session.PlayerSession, now time.Time) {
	if inst.IsSpellcaster() && o.rollChance(o.cfg.CastChance) {
		if o.mobCast(inst, target, now) {
			return
		}
	}

	if use, ok := o.abilities.Choose(inst.ID, inst.Abilities, now, o.src); ok {
		o.mobUseAbility(inst, target, use.Spec.Verb, use.Damage, now)
		return
	}

	o.mobMelee(inst, target, now)
}

// mobCast commits and resolves one spell cast. Mana and cooldown are
// spent before the failure roll; a fizzle wastes both.
//
// Postcondition: Returns false only when nothing was castable, in which
// case no resources moved and the caller falls through to an attack.
func (o *Orchestrator) mobCast(inst *mob.Instance, target *session.PlayerSession, now time.Time) bool {
	defs, err := o.spells.Resolve(inst.Spellcaster.Spells)
	if err != nil {
		o.log.Warn("mob references unknown spells",
			zap.String("mob", inst.ID),
			zap.Error(err),
		)
		return false
	}

	healThreshold := inst.Spellcaster.HealThreshold
	if healThreshold <= 0 {
		healThreshold = o.cfg.HealThreshold
	}
	state := o.casterStateFor(inst, now)
	def := spell.Choose(defs, state, inst.HealthFraction(), healThreshold, now, o.src)
	if def == nil {
		return false
	}

	if !o.economy.TryAttack(inst.ID, inst.Level, now) {
		return false
	}
	// Commit imposes the spell-fatigue window; no cast lands again before
	// it expires, no matter which spell.
	state.Commit(def, now)

	intelligence := inst.Stats.Get(stats.Intelligence)
	if spell.RollFailure(inst.Level, def.MinLevel, intelligence, inst.Spellcaster.Skill, o.src) {
		o.queueRoom(inst.RoomID, "", fmt.Sprintf("The %s's spell fizzles.", inst.Name))
		return true
	}

	if def.Kind == spell.Healing {
		heal := spell.RollHeal(def, o.src)
		inst.HP += heal
		if inst.HP > inst.MaxHP {
			inst.HP = inst.MaxHP
		}
		o.queueRoom(inst.RoomID, "", fmt.Sprintf("The %s %s and its wounds close.", inst.Name, def.Verb))
		return true
	}

	result := combat.Spell(intelligence, def.MinLevel, o.src)
	// Magical damage bypasses armor.
	target.ApplyDamage(result.Amount)
	o.outbox.Queue(target.UID,
		fmt.Sprintf("The %s %s you for %d damage!", inst.Name, def.Verb, result.Amount))
	o.queueRoom(inst.RoomID, target.UID,
		fmt.Sprintf("The %s %s %s.", inst.Name, def.Verb, target.CharName))
	if target.IsDead() {
		o.killPlayer(target, inst.Name, now)
	}
	return true
}

// mobUseAbility delivers a special attack: it always lands, armor still
// reduces it, and the user is exhausted afterwards.
func (o *Orchestrator) mobUseAbility(inst *mob.Instance, target *session.PlayerSession, verb string, damage int, now time.Time) {
	reduced := combat.ApplyArmor(damage, target.ArmorClass())
	target.ApplyDamage(reduced)
	o.economy.ForceFatigue(inst.ID, now, combat.FatigueDuration)

	o.outbox.Queue(target.UID,
		fmt.Sprintf("The %s %s you for %d damage!", inst.Name, verb, reduced))
	o.queueRoom(inst.RoomID, target.UID,
		fmt.Sprintf("The %s %s %s.", inst.Name, verb, target.CharName))
	if target.IsDead() {
		o.killPlayer(target, inst.Name, now)
	}
}

// mobMelee resolves one basic attack from the mob against the target.
func (o *Orchestrator) mobMelee(inst *mob.Instance, target *session.PlayerSession, now time.Time) {
	if !o.economy.TryAttack(inst.ID, inst.Level, now) {
		return
	}

	outcome := combat.ResolveAttack(
		inst.Stats.Get(stats.Dexterity),
		target.EffectiveStat(stats.Dexterity, now),
		target.ArmorClass(),
		0,
		o.src,
	)
	if outcome != combat.OutcomeHit {
		o.outbox.Queue(target.UID, fmt.Sprintf("The %s attacks you and misses.", inst.Name))
		o.queueRoom(inst.RoomID, target.UID,
			fmt.Sprintf("The %s attacks %s and misses.", inst.Name, target.CharName))
		return
	}

	var weaponDamage string
	var weaponRanged bool
	if inst.Weapon != nil {
		weaponDamage = inst.Weapon.Damage
		weaponRanged = inst.Weapon.Ranged
	}
	result := combat.Melee(
		inst.Stats.Get(stats.Strength),
		weaponDamage, weaponRanged, &inst.Natural,
		o.cfg.CritMultiplier, o.src,
	)
	reduced := combat.ApplyArmor(result.Amount, target.ArmorClass())
	target.ApplyDamage(reduced)

	o.outbox.Queue(target.UID,
		fmt.Sprintf("The %s hits you for %d damage!", inst.Name, reduced))
	o.queueRoom(inst.RoomID, target.UID,
		fmt.Sprintf("The %s hits %s for %d damage.", inst.Name, target.CharName, reduced))
	if target.IsDead() {
		o.killPlayer(target, inst.Name, now)
	}
}

// pursue moves the mob one step along the shortest passable path toward
// its target's last-known room. A blocked path drops the grudge.
func (o *Orchestrator) pursue(inst *mob.Instance, toRoom string, now time.Time) {
	exit, ok := o.world.NextStepToward(inst.RoomID, toRoom)
	if !ok {
		o.threat.Clear(inst.ID)
		return
	}
	from := inst.RoomID
	if err := o.mobs.Move(inst.ID, exit.TargetRoom); err != nil {
		o.log.Warn("pursuit move failed", zap.String("mob", inst.ID), zap.Error(err))
		return
	}
	o.queueRoom(from, "", fmt.Sprintf("The %s stalks off %s.", inst.Name, exit.Direction))
	o.queueRoom(exit.TargetRoom, "", fmt.Sprintf("The %s prowls in, hunting.", inst.Name))
}
