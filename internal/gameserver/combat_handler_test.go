package gameserver_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/emberfall/internal/game/item"
	"github.com/cory-johannsen/emberfall/internal/game/loot"
	"github.com/cory-johannsen/emberfall/internal/game/mob"
)

// TestHandleAttack_FullFight walks a level-1 player through an entire
// fight: two attacks empty the budget, the third is rejected during the
// fatigue window, and after recovery the killing blow pays experience,
// gold, and schedules the lair respawn.
//
// Spawn rolls use fixedSource{2}: the rat lands at 24 HP (82% of 30),
// DEX 11, and an 8 gold purse. Each scripted attack rolls hit, dodge,
// a 3-point unarmed swing, and no crit, for 7+3 = 10 damage.
func TestHandleAttack_FullFight(t *testing.T) {
	src := &seqSource{vals: []int{
		0, 9999, 2, 9999, // first attack: 10 damage
		0, 9999, 2, 9999, // second attack: 10 damage
		0, 9999, 2, 9999, // killing blow after recovery
	}}
	f := newFixture(t, src, ratTemplate())
	sess := f.addPlayer(t, "1", "Aldric", "alley")
	inst, err := f.mobs.Spawn(ratTemplate(), "alley", mob.OriginLair)
	require.NoError(t, err)
	require.Equal(t, 24, inst.MaxHP)

	now := time.Unix(1_700_000_000, 0)

	require.NoError(t, f.orc.HandleAttack("1", "giant", now))
	assert.Equal(t, 14, inst.HP)

	require.NoError(t, f.orc.HandleAttack("1", "giant", now))
	assert.Equal(t, 4, inst.HP)

	err = f.orc.HandleAttack("1", "giant", now.Add(time.Second))
	require.Error(t, err, "third attack inside the fatigue window")
	assert.Contains(t, err.Error(), "exhausted")
	assert.True(t, f.economy.IsFatigued("1", sess.Level, now.Add(time.Second)))

	recovered := now.Add(16 * time.Second)
	require.NoError(t, f.orc.HandleAttack("1", "giant", recovered))
	assert.True(t, inst.IsDead())

	// Credit is capped at the rat's 24 max HP: 24 XP at equal level.
	assert.Equal(t, 24, sess.Experience)
	assert.Equal(t, 8, sess.Gold)
	_, alive := f.mobs.Get(inst.ID)
	assert.False(t, alive, "dead mob is removed")

	lines := f.drain()["1"]
	assert.Contains(t, lines, "The giant rat dies.")
	assert.Contains(t, lines, "You gain 24 experience.")
	assert.Contains(t, lines, "You loot 8 gold.")

	// The lair replaces its dead rat after the room's 1s delay.
	f.orc.Tick(recovered.Add(2 * time.Second))
	assert.Len(t, f.mobs.InstancesInRoom("alley"), 1)
}

func TestHandleAttack_Miss(t *testing.T) {
	src := &seqSource{vals: []int{9999}}
	f := newFixture(t, src, ratTemplate())
	f.addPlayer(t, "1", "Aldric", "alley")
	inst, err := f.mobs.Spawn(ratTemplate(), "alley", mob.OriginLair)
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	require.NoError(t, f.orc.HandleAttack("1", "giant", now))
	assert.Equal(t, inst.MaxHP, inst.HP, "a miss deals nothing")
	assert.Contains(t, f.drain()["1"], "You miss the giant rat.")

	// The swing still consumed an attack.
	assert.Equal(t, 1, f.economy.AttacksRemaining("1", 1, now))
}

func TestHandleAttack_SafeRoomRejected(t *testing.T) {
	f := newFixture(t, fixedSource{val: 0}, ratTemplate())
	f.addPlayer(t, "1", "Aldric", "square")

	err := f.orc.HandleAttack("1", "giant", time.Unix(1_700_000_000, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "violence is impossible")
}

func TestHandleAttack_UnknownTarget(t *testing.T) {
	f := newFixture(t, fixedSource{val: 0})
	f.addPlayer(t, "1", "Aldric", "alley")

	err := f.orc.HandleAttack("1", "dragon", time.Unix(1_700_000_000, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "you don't see")
}

func shortbow() *item.Weapon {
	return &item.Weapon{
		ID: "shortbow", Name: "shortbow", Damage: "1d6",
		Ranged: true, AmmoType: "arrow",
	}
}

// TestHandleShoot_CrossRoom fires east from the alley into the gate: the
// shot lands at the cross-room hit penalty, damage is scaled to 90%, and
// the arrow lands in the target room win or lose.
func TestHandleShoot_CrossRoom(t *testing.T) {
	src := &seqSource{vals: []int{0, 9999, 5, 9999}}
	f := newFixture(t, src, ratTemplate())
	sess := f.addPlayer(t, "1", "Aldric", "alley")
	sess.Weapon = shortbow()
	sess.AddAmmo("arrow", 2)

	inst, err := f.mobs.Spawn(ratTemplate(), "gate", mob.OriginLair)
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	require.NoError(t, f.orc.HandleShoot("1", "giant", "east", now))

	// 5 base + 6 weapon = 11, scaled to 9 across the room boundary.
	assert.Equal(t, inst.MaxHP-9, inst.HP)
	assert.Equal(t, 1, sess.AmmoCount("arrow"))
	assert.Equal(t, 1, f.orc.Ammo().Count("gate", "arrow"))

	rec, ok := f.threat.Target(inst.ID, now)
	require.True(t, ok, "the rat now holds a grudge")
	assert.Equal(t, "1", rec.TargetID)
	assert.Equal(t, "alley", rec.TargetRoom, "grudge points at the shooter's room")
}

func TestHandleShoot_SameRoom(t *testing.T) {
	src := &seqSource{vals: []int{0, 9999, 5, 9999}}
	f := newFixture(t, src, ratTemplate())
	sess := f.addPlayer(t, "1", "Aldric", "gate")
	sess.Weapon = shortbow()
	sess.AddAmmo("arrow", 1)

	inst, err := f.mobs.Spawn(ratTemplate(), "gate", mob.OriginLair)
	require.NoError(t, err)

	require.NoError(t, f.orc.HandleShoot("1", "giant", "", time.Unix(1_700_000_000, 0)))
	assert.Equal(t, inst.MaxHP-11, inst.HP, "no cross-room scaling in the same room")
	assert.Equal(t, 1, f.orc.Ammo().Count("gate", "arrow"))
}

func TestHandleShoot_OutOfAmmo(t *testing.T) {
	f := newFixture(t, fixedSource{val: 0}, ratTemplate())
	sess := f.addPlayer(t, "1", "Aldric", "gate")
	sess.Weapon = shortbow()

	_, err := f.mobs.Spawn(ratTemplate(), "gate", mob.OriginLair)
	require.NoError(t, err)

	err = f.orc.HandleShoot("1", "giant", "", time.Unix(1_700_000_000, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of arrows")
}

func TestHandleShoot_MeleeWeaponRejected(t *testing.T) {
	f := newFixture(t, fixedSource{val: 0}, ratTemplate())
	sess := f.addPlayer(t, "1", "Aldric", "gate")
	sess.Weapon = &item.Weapon{ID: "dagger", Name: "dagger", Damage: "1d4"}

	err := f.orc.HandleShoot("1", "giant", "", time.Unix(1_700_000_000, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to shoot with")
}

func TestHandleShoot_BadDirection(t *testing.T) {
	f := newFixture(t, fixedSource{val: 0}, ratTemplate())
	sess := f.addPlayer(t, "1", "Aldric", "gate")
	sess.Weapon = shortbow()
	sess.AddAmmo("arrow", 1)

	err := f.orc.HandleShoot("1", "giant", "north", time.Unix(1_700_000_000, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no exit")
	assert.Equal(t, 1, sess.AmmoCount("arrow"), "no round spent on a bad direction")
}

// TestHandleRetrieveAmmo sweeps four arrows at a scripted 50% recovery:
// draws alternate pass/fail, recovering exactly two.
func TestHandleRetrieveAmmo(t *testing.T) {
	src := &seqSource{vals: []int{0, 9999, 0, 9999}}
	f := newFixture(t, src)
	sess := f.addPlayer(t, "1", "Aldric", "alley")
	f.orc.Ammo().Add("alley", "arrow", 4)

	require.NoError(t, f.orc.HandleRetrieveAmmo("1", time.Unix(1_700_000_000, 0)))
	assert.Equal(t, 2, sess.AmmoCount("arrow"))
	assert.Equal(t, 0, f.orc.Ammo().Count("alley", "arrow"))
	assert.Contains(t, f.drain()["1"], "You recover 2 of 4 arrows.")
}

func TestHandleRetrieveAmmo_EmptyRoom(t *testing.T) {
	f := newFixture(t, fixedSource{val: 0})
	f.addPlayer(t, "1", "Aldric", "alley")

	err := f.orc.HandleRetrieveAmmo("1", time.Unix(1_700_000_000, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing worth picking up")
}

// TestHandleAttack_LairBonusLoot: a lair kill rolls the room's bonus
// table on top of the template drops; the same rat dying as a wanderer in
// the same room leaves nothing extra.
func TestHandleAttack_LairBonusLoot(t *testing.T) {
	src := &seqSource{vals: []int{
		0, 9999, 2, 9999, // killing blow on the lair rat
		0,                // bonus table roll succeeds
		0, 9999, 2, 9999, // killing blow on the wanderer
	}}
	f := newFixture(t, src, ratTemplate())
	f.addPlayer(t, "1", "Aldric", "gate")
	room, ok := f.world.GetRoom("gate")
	require.True(t, ok)
	room.LairLoot = &loot.Table{Items: []loot.Drop{
		{ItemID: "drake_scale", Chance: 1.0, MinQty: 1, MaxQty: 1},
	}}

	now := time.Unix(1_700_000_000, 0)
	lairRat, err := f.mobs.Spawn(ratTemplate(), "gate", mob.OriginLair)
	require.NoError(t, err)
	lairRat.HP = 1
	require.NoError(t, f.orc.HandleAttack("1", "giant", now))
	require.True(t, lairRat.IsDead())
	assert.Contains(t, f.drain()["1"], "The giant rat drops: drake_scale.")

	wanderer, err := f.mobs.Spawn(ratTemplate(), "gate", mob.OriginWandering)
	require.NoError(t, err)
	wanderer.HP = 1
	require.NoError(t, f.orc.HandleAttack("1", "giant", now))
	require.True(t, wanderer.IsDead())
	for _, line := range f.drain()["1"] {
		assert.NotContains(t, line, "drops:", "no bonus roll for non-lair kills")
	}
}

// TestHandleShoot_FatigueRefundsRound: a shot rejected inside the fatigue
// window puts the round back in the quiver and leaves the room clean.
func TestHandleShoot_FatigueRefundsRound(t *testing.T) {
	f := newFixture(t, fixedSource{val: 0}, ratTemplate())
	sess := f.addPlayer(t, "1", "Aldric", "gate")
	sess.Weapon = shortbow()
	sess.AddAmmo("arrow", 1)

	_, err := f.mobs.Spawn(ratTemplate(), "gate", mob.OriginLair)
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	f.economy.ForceFatigue("1", now, 15*time.Second)

	err = f.orc.HandleShoot("1", "giant", "", now.Add(time.Second))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exhausted")
	assert.Equal(t, 1, sess.AmmoCount("arrow"), "the round never left the weapon")
	assert.Equal(t, 0, f.orc.Ammo().Count("gate", "arrow"))
}
