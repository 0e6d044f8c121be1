package gameserver

import (
	"fmt"
	"time"

	"github.com/cory-johannsen/emberfall/internal/game/mob"
	"github.com/cory-johannsen/emberfall/internal/game/world"
)

// HandleMove walks a player through an exit. Mobs holding a grudge
// against the player learn the new room; wanderers among them may give
// chase immediately instead of waiting for the pursuit tick.
//
// Precondition: uid must be a connected player; direction must name an
// exit from the player's room.
func (o *Orchestrator) HandleMove(uid, direction string, now time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	sess, ok := o.sessions.Get(uid)
	if !ok {
		return fmt.Errorf("player %q not found", uid)
	}
	if sess.IsDead() {
		return fmt.Errorf("you are in no shape to travel")
	}

	dest, err := o.world.Navigate(sess.RoomID, world.Direction(direction))
	if err != nil {
		return err
	}

	oldRoom, err := o.sessions.MovePlayer(uid, dest.ID)
	if err != nil {
		return err
	}

	o.queueRoom(oldRoom, uid, fmt.Sprintf("%s leaves %s.", sess.CharName, direction))
	o.queueRoom(dest.ID, uid, fmt.Sprintf("%s arrives.", sess.CharName))
	o.outbox.Queue(uid, dest.Title)

	o.chaseLeaver(uid, oldRoom, dest.ID, now)
	return nil
}

// chaseLeaver gives each grudge-holding mob in the room the player just
// left a chance to follow on its heels. Only wanderers follow eagerly;
// lair mobs rely on the pursuit tick.
func (o *Orchestrator) chaseLeaver(uid, fromRoom, toRoom string, now time.Time) {
	if o.world.IsSafeRoom(toRoom) {
		return
	}
	for _, inst := range o.mobs.InstancesInRoom(fromRoom) {
		rec, ok := o.threat.Target(inst.ID, now)
		if !ok || rec.TargetID != uid {
			continue
		}
		o.threat.UpdateRoom(inst.ID, toRoom, now)
		if inst.Origin != mob.OriginWandering {
			continue
		}
		if !o.rollChance(o.cfg.FollowChance) {
			continue
		}
		if !o.mobCanReach(fromRoom, toRoom) {
			continue
		}
		if err := o.mobs.Move(inst.ID, toRoom); err != nil {
			continue
		}
		o.outbox.Queue(uid, fmt.Sprintf("The %s follows you!", inst.Name))
		o.queueRoom(fromRoom, uid, fmt.Sprintf("The %s gives chase.", inst.Name))
	}
}

// mobCanReach reports whether toRoom is directly reachable for a mob from
// fromRoom.
func (o *Orchestrator) mobCanReach(fromRoom, toRoom string) bool {
	for _, e := range o.world.MobExits(fromRoom) {
		if e.TargetRoom == toRoom {
			return true
		}
	}
	return false
}
