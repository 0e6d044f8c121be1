package mob_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/emberfall/internal/game/mob"
)

func lairFixture(t *testing.T) (*mob.LairManager, *mob.Manager) {
	t.Helper()
	tmpl := ratTemplate()
	tmpl.RespawnDelay = "60s"
	require.NoError(t, tmpl.Validate())

	lairs := map[string][]mob.LairConfig{
		"cellar": {{TemplateID: "giant-rat", Max: 2}},
	}
	templates := map[string]*mob.Template{"giant-rat": tmpl}
	return mob.NewLairManager(lairs, templates), mob.NewManager(nil, fixedSource{0})
}

func TestLairManager_PopulateRoom(t *testing.T) {
	lm, mgr := lairFixture(t)

	lm.PopulateRoom("cellar", mgr)
	instances := mgr.InstancesInRoom("cellar")
	require.Len(t, instances, 2)
	for _, inst := range instances {
		assert.Equal(t, mob.OriginLair, inst.Origin)
	}

	// Idempotent at cap.
	lm.PopulateRoom("cellar", mgr)
	assert.Len(t, mgr.InstancesInRoom("cellar"), 2)

	// Rooms without lair configs are untouched.
	lm.PopulateRoom("attic", mgr)
	assert.Empty(t, mgr.InstancesInRoom("attic"))
}

func TestLairManager_PopulateRoom_TrimsExcess(t *testing.T) {
	lm, mgr := lairFixture(t)
	for i := 0; i < 4; i++ {
		_, err := mgr.Spawn(ratTemplate(), "cellar", mob.OriginLair)
		require.NoError(t, err)
	}

	lm.PopulateRoom("cellar", mgr)
	assert.Len(t, mgr.InstancesInRoom("cellar"), 2)
}

func TestLairManager_ScheduleAndTick(t *testing.T) {
	lm, mgr := lairFixture(t)
	now := time.Unix(1_700_000_000, 0)

	lm.Schedule("giant-rat", "cellar", now)

	// Not ready yet.
	lm.Tick(now.Add(59*time.Second), mgr)
	assert.Empty(t, mgr.InstancesInRoom("cellar"))

	lm.Tick(now.Add(60*time.Second), mgr)
	assert.Len(t, mgr.InstancesInRoom("cellar"), 1)

	// Entry was consumed.
	lm.Tick(now.Add(2*time.Minute), mgr)
	assert.Len(t, mgr.InstancesInRoom("cellar"), 1)
}

func TestLairManager_TickHonorsCap(t *testing.T) {
	lm, mgr := lairFixture(t)
	now := time.Unix(1_700_000_000, 0)
	lm.PopulateRoom("cellar", mgr)

	lm.Schedule("giant-rat", "cellar", now)
	lm.Tick(now.Add(time.Hour), mgr)
	assert.Len(t, mgr.InstancesInRoom("cellar"), 2, "respawn suppressed at cap")
}

func TestLairManager_ScheduleIgnoresNonLairRooms(t *testing.T) {
	lm, mgr := lairFixture(t)
	now := time.Unix(1_700_000_000, 0)

	// A wandering rat dying in the attic never queues a respawn.
	lm.Schedule("giant-rat", "attic", now)
	lm.Tick(now.Add(time.Hour), mgr)
	assert.Empty(t, mgr.InstancesInRoom("attic"))
}

func TestLairManager_ResolvedDelay(t *testing.T) {
	tmpl := ratTemplate()
	lairs := map[string][]mob.LairConfig{
		"cellar": {{TemplateID: "giant-rat", Max: 1, RespawnDelay: 45 * time.Second}},
		"tunnel": {{TemplateID: "giant-rat", Max: 1}},
	}
	lm := mob.NewLairManager(lairs, map[string]*mob.Template{"giant-rat": tmpl})

	assert.Equal(t, 45*time.Second, lm.ResolvedDelay("giant-rat", "cellar"), "room override wins")
	assert.Equal(t, mob.DefaultRespawnDelay, lm.ResolvedDelay("giant-rat", "tunnel"), "template default")
	assert.Equal(t, time.Duration(0), lm.ResolvedDelay("giant-rat", "attic"), "no lair config")
}

func TestNewLairManager_NilArgs(t *testing.T) {
	lm := mob.NewLairManager(nil, nil)
	mgr := mob.NewManager(nil, fixedSource{0})
	lm.PopulateRoom("anywhere", mgr)
	lm.Tick(time.Unix(1_700_000_000, 0), mgr)
	assert.Empty(t, mgr.All())
}
