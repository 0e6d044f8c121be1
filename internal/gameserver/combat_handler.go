package gameserver

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/emberfall/internal/game/combat"
	"github.com/cory-johannsen/emberfall/internal/game/loot"
	"github.com/cory-johannsen/emberfall/internal/game/mob"
	"github.com/cory-johannsen/emberfall/internal/game/session"
	"github.com/cory-johannsen/emberfall/internal/game/stats"
	"github.com/cory-johannsen/emberfall/internal/game/world"
)

// HandleAttack resolves one melee attack by uid against the first mob in
// the player's room matching target.
//
// Precondition: uid must be a connected player; target must be non-empty.
// Postcondition: On success one attack is consumed from the player's
// budget and all resulting messages are queued on the outbox.
func (o *Orchestrator) HandleAttack(uid, target string, now time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	sess, inst, err := o.resolveMeleeTarget(uid, target)
	if err != nil {
		return err
	}

	if !o.economy.TryAttack(uid, sess.Level, now) {
		return o.fatigueError(uid, sess.Level, now)
	}

	outcome := combat.ResolveAttack(
		sess.EffectiveStat(stats.Dexterity, now),
		inst.Stats.Get(stats.Dexterity),
		inst.ArmorClass,
		0,
		o.src,
	)
	o.threat.Touch(inst.ID, uid, sess.RoomID, now)

	if outcome != combat.OutcomeHit {
		o.queueAttackMiss(sess, inst, outcome)
		return nil
	}

	var weaponDamage string
	var weaponRanged bool
	if sess.Weapon != nil {
		weaponDamage = sess.Weapon.Damage
		weaponRanged = sess.Weapon.Ranged
	}
	result := combat.Melee(
		sess.EffectiveStat(stats.Strength, now),
		weaponDamage, weaponRanged, nil,
		o.cfg.CritMultiplier, o.src,
	)
	o.dealToMob(sess, inst, result.Amount, result.Critical, now)
	return nil
}

// HandleShoot resolves one ranged attack. With an empty direction the
// target is sought in the shooter's room; otherwise the shot goes through
// the named exit into the adjacent room, at reduced accuracy and damage.
//
// Precondition: uid must be a connected player holding a ranged weapon
// with ammunition.
// Postcondition: One round of ammunition is spent and lands in the target
// room whether or not the shot connects.
func (o *Orchestrator) HandleShoot(uid, target, direction string, now time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	sess, ok := o.sessions.Get(uid)
	if !ok {
		return fmt.Errorf("player %q not found", uid)
	}
	if sess.IsDead() {
		return fmt.Errorf("you are in no shape to fight")
	}
	if sess.Weapon == nil || !sess.Weapon.Ranged {
		return fmt.Errorf("you have nothing to shoot with")
	}
	if o.world.IsSafeRoom(sess.RoomID) {
		return fmt.Errorf("violence is impossible here")
	}

	targetRoom := sess.RoomID
	crossRoom := false
	if direction != "" {
		room, ok := o.world.GetRoom(sess.RoomID)
		if !ok {
			return fmt.Errorf("room %q not found", sess.RoomID)
		}
		exit, ok := room.ExitForDirection(world.Direction(direction))
		if !ok || exit.Hidden {
			return fmt.Errorf("there is no exit %s", direction)
		}
		targetRoom = exit.TargetRoom
		crossRoom = true
	}

	inst := o.mobs.FindInRoom(targetRoom, target)
	if inst == nil {
		return fmt.Errorf("you don't see %q there", target)
	}
	if inst.IsDead() {
		return fmt.Errorf("%s is already dead", inst.Name)
	}

	kind := sess.Weapon.AmmoType
	if !sess.ConsumeAmmo(kind) {
		return fmt.Errorf("you are out of %ss", kind)
	}

	if !o.economy.TryAttack(uid, sess.Level, now) {
		// A shot rejected by the fatigue gate never leaves the weapon;
		// the round goes back in the quiver.
		sess.AddAmmo(kind, 1)
		return o.fatigueError(uid, sess.Level, now)
	}

	// The round lands in the target room regardless of outcome.
	o.ammo.Add(targetRoom, kind, 1)

	hitModifier := 0.0
	if crossRoom {
		hitModifier = -combat.CrossRoomHitPenalty
	}
	outcome := combat.ResolveAttack(
		sess.EffectiveStat(stats.Dexterity, now),
		inst.Stats.Get(stats.Dexterity),
		inst.ArmorClass,
		hitModifier,
		o.src,
	)
	o.threat.Touch(inst.ID, uid, sess.RoomID, now)

	if outcome != combat.OutcomeHit {
		o.outbox.Queue(uid, fmt.Sprintf("Your %s flies wide of the %s.", kind, inst.Name))
		o.queueRoom(targetRoom, uid, fmt.Sprintf("A stray %s clatters to the ground near the %s.", kind, inst.Name))
		return nil
	}

	result := combat.Ranged(
		sess.EffectiveStat(stats.Dexterity, now),
		sess.Weapon.Damage,
		o.cfg.CritMultiplier, o.src,
	)
	amount := result.Amount
	if crossRoom {
		amount = combat.CrossRoomDamage(amount)
	}
	o.dealToMob(sess, inst, amount, result.Critical, now)
	return nil
}

// HandleRetrieveAmmo sweeps the player's room for spent ammunition. Each
// round survives with the configured recovery chance.
//
// Postcondition: The room's spent-ammo pool is empty; recovered rounds are
// back in the player's inventory.
func (o *Orchestrator) HandleRetrieveAmmo(uid string, now time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	sess, ok := o.sessions.Get(uid)
	if !ok {
		return fmt.Errorf("player %q not found", uid)
	}

	spent := o.ammo.TakeAll(sess.RoomID)
	if len(spent) == 0 {
		return fmt.Errorf("you find nothing worth picking up")
	}

	for kind, n := range spent {
		recovered := 0
		for i := 0; i < n; i++ {
			if o.rollChance(o.cfg.AmmoRecoveryChance) {
				recovered++
			}
		}
		if recovered > 0 {
			sess.AddAmmo(kind, recovered)
		}
		o.outbox.Queue(uid, fmt.Sprintf("You recover %d of %d %ss.", recovered, n, kind))
	}
	return nil
}

// resolveMeleeTarget validates a same-room attack and returns the
// combatants.
func (o *Orchestrator) resolveMeleeTarget(uid, target string) (*session.PlayerSession, *mob.Instance, error) {
	sess, ok := o.sessions.Get(uid)
	if !ok {
		return nil, nil, fmt.Errorf("player %q not found", uid)
	}
	if sess.IsDead() {
		return nil, nil, fmt.Errorf("you are in no shape to fight")
	}
	if o.world.IsSafeRoom(sess.RoomID) {
		return nil, nil, fmt.Errorf("violence is impossible here")
	}
	inst := o.mobs.FindInRoom(sess.RoomID, target)
	if inst == nil {
		return nil, nil, fmt.Errorf("you don't see %q here", target)
	}
	if inst.IsDead() {
		return nil, nil, fmt.Errorf("%s is already dead", inst.Name)
	}
	return sess, inst, nil
}

// fatigueError builds the rejection for an attack attempted while the
// budget is spent.
func (o *Orchestrator) fatigueError(uid string, level int, now time.Time) error {
	remaining := o.economy.FatigueRemaining(uid, level, now)
	if remaining > 0 {
		return fmt.Errorf("you are exhausted; recovered in %s", remaining.Round(time.Second))
	}
	return fmt.Errorf("you have no attacks left")
}

// queueAttackMiss narrates a non-hit outcome to the attacker and the room.
func (o *Orchestrator) queueAttackMiss(sess *session.PlayerSession, inst *mob.Instance, outcome combat.Outcome) {
	switch outcome {
	case combat.OutcomeDodge:
		o.outbox.Queue(sess.UID, fmt.Sprintf("The %s dodges your attack.", inst.Name))
	case combat.OutcomeDeflect:
		o.outbox.Queue(sess.UID, fmt.Sprintf("Your blow glances off the %s's armor.", inst.Name))
	default:
		o.outbox.Queue(sess.UID, fmt.Sprintf("You miss the %s.", inst.Name))
	}
	o.queueRoom(inst.RoomID, sess.UID,
		fmt.Sprintf("%s attacks the %s and misses.", sess.CharName, inst.Name))
}

// dealToMob applies armor-reduced damage to a mob, credits the ledger,
// narrates, and settles the kill when the mob drops.
func (o *Orchestrator) dealToMob(sess *session.PlayerSession, inst *mob.Instance, amount int, critical bool, now time.Time) {
	reduced := combat.ApplyArmor(amount, inst.ArmorClass)
	inst.HP -= reduced
	if inst.HP < 0 {
		inst.HP = 0
	}
	o.ledger.Record(inst.ID, sess.UID, reduced, inst.MaxHP)

	verb := "hit"
	if critical {
		verb = "critically hit"
	}
	o.outbox.Queue(sess.UID, fmt.Sprintf("You %s the %s for %d damage.", verb, inst.Name, reduced))
	o.queueRoom(inst.RoomID, sess.UID,
		fmt.Sprintf("%s hits the %s for %d damage.", sess.CharName, inst.Name, reduced))

	if inst.IsDead() {
		o.killMob(inst, sess, now)
	}
}

// killMob settles a mob death: experience by damage credit, gold to the
// killer or their party, loot drops, respawn scheduling, and state
// teardown.
//
// Precondition: inst.IsDead() must be true; killer may be nil when the
// death had no player agent.
func (o *Orchestrator) killMob(inst *mob.Instance, killer *session.PlayerSession, now time.Time) {
	o.queueRoom(inst.RoomID, "", fmt.Sprintf("The %s dies.", inst.Name))

	for uid, credit := range o.ledger.Credits(inst.ID) {
		p, ok := o.sessions.Get(uid)
		if !ok {
			continue
		}
		xp := loot.ExperienceForDamage(credit, inst.Level, p.Level)
		if xp > 0 {
			p.Experience += xp
			o.outbox.Queue(uid, fmt.Sprintf("You gain %d experience.", xp))
		}
	}

	o.payGold(inst, killer)
	o.dropLoot(inst, killer)

	if o.lairs != nil && inst.Origin == mob.OriginLair {
		o.lairs.Schedule(inst.TemplateID, inst.RoomID, now)
	}

	o.forgetMob(inst.ID)
	if err := o.mobs.Remove(inst.ID); err != nil {
		o.log.Warn("removing dead mob", zap.String("mob", inst.ID), zap.Error(err))
	}
	o.log.Info("mob died",
		zap.String("mob", inst.ID),
		zap.String("room", inst.RoomID),
	)
}

// payGold splits the mob's gold among the killer's party members present
// in the room, or hands it all to a solo killer. The undistributed
// remainder is logged and absorbed.
func (o *Orchestrator) payGold(inst *mob.Instance, killer *session.PlayerSession) {
	if killer == nil || inst.GoldReward <= 0 {
		return
	}

	members := o.sessions.PartyMembersInRoom(killer.PartyID, inst.RoomID)
	if len(members) <= 1 {
		killer.Gold += inst.GoldReward
		o.outbox.Queue(killer.UID, fmt.Sprintf("You loot %d gold.", inst.GoldReward))
		return
	}

	share, remainder := loot.SplitGold(inst.GoldReward, len(members))
	for _, m := range members {
		m.Gold += share
		o.outbox.Queue(m.UID, fmt.Sprintf("Your share of the loot is %d gold.", share))
	}
	if remainder > 0 {
		o.log.Debug("gold split remainder absorbed",
			zap.String("mob", inst.ID),
			zap.Int("remainder", remainder),
		)
	}
}

// dropLoot rolls the template's loot table plus the room's lair bonus
// table for lair-origin kills, appends the guaranteed equipped gear, and
// narrates the drops.
func (o *Orchestrator) dropLoot(inst *mob.Instance, killer *session.PlayerSession) {
	var result loot.Result
	if tmpl, ok := o.templates[inst.TemplateID]; ok && tmpl.Loot != nil {
		result = tmpl.Loot.Generate(o.src)
	}
	if inst.Origin == mob.OriginLair {
		if room, ok := o.world.GetRoom(inst.RoomID); ok && room.LairLoot != nil {
			result.Merge(room.LairLoot.Generate(o.src))
		}
	}
	result.AddGuaranteed(inst.WeaponID)
	result.AddGuaranteed(inst.ArmorID)
	if len(result.Items) == 0 {
		return
	}

	names := make([]string, 0, len(result.Items))
	for _, it := range result.Items {
		if it.Quantity > 1 {
			names = append(names, fmt.Sprintf("%s x%d", it.ItemDefID, it.Quantity))
		} else {
			names = append(names, it.ItemDefID)
		}
	}
	line := fmt.Sprintf("The %s drops: %s.", inst.Name, strings.Join(names, ", "))
	if killer != nil {
		o.outbox.Queue(killer.UID, line)
		o.queueRoom(inst.RoomID, killer.UID, line)
	} else {
		o.queueRoom(inst.RoomID, "", line)
	}
}

// killPlayer settles a player death: grudges against the player are
// cleared and the player respawns at the world start room at full health,
// with no advancement penalty.
func (o *Orchestrator) killPlayer(p *session.PlayerSession, killerName string, now time.Time) {
	o.outbox.Queue(p.UID, fmt.Sprintf("The %s has slain you!", killerName))
	o.queueRoom(p.RoomID, p.UID, fmt.Sprintf("%s falls to the %s.", p.CharName, killerName))

	o.threat.ClearTarget(p.UID)
	o.economy.Forget(p.UID)

	start := o.world.StartRoom()
	if start == nil {
		o.log.Error("no start room for respawn", zap.String("player", p.UID))
		return
	}
	if _, err := o.sessions.MovePlayer(p.UID, start.ID); err != nil {
		o.log.Error("respawn move failed", zap.String("player", p.UID), zap.Error(err))
		return
	}
	p.Respawn(start.ID)
	o.outbox.Queue(p.UID, fmt.Sprintf("You awaken in %s, whole again.", start.Title))
	o.queueRoom(start.ID, p.UID, fmt.Sprintf("%s staggers in, pale but alive.", p.CharName))
}
