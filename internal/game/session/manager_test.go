package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/emberfall/internal/game/session"
	"github.com/cory-johannsen/emberfall/internal/game/stats"
)

func newSession(uid, name, roomID string) *session.PlayerSession {
	return &session.PlayerSession{
		UID: uid, CharName: name, RoomID: roomID,
		Level: 1, HP: 20, MaxHP: 20,
		Stats: stats.Block{Strength: 12, Dexterity: 12, Constitution: 12, Intelligence: 10, Wisdom: 10, Charisma: 10},
	}
}

func TestManager_AddAndGet(t *testing.T) {
	mgr := session.NewManager()
	sess := newSession("1", "Aldric", "square")
	require.NoError(t, mgr.Add(sess))

	got, ok := mgr.Get("1")
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.NotNil(t, sess.Ammo, "ammo map initialized on add")

	assert.Error(t, mgr.Add(sess), "duplicate UID rejected")
	assert.Error(t, mgr.Add(&session.PlayerSession{UID: "", RoomID: "square"}))
	assert.Error(t, mgr.Add(&session.PlayerSession{UID: "2"}))
}

func TestManager_Remove(t *testing.T) {
	mgr := session.NewManager()
	require.NoError(t, mgr.Add(newSession("1", "Aldric", "square")))

	require.NoError(t, mgr.Remove("1"))
	_, ok := mgr.Get("1")
	assert.False(t, ok)
	assert.False(t, mgr.AnyInRoom("square"))
	assert.Error(t, mgr.Remove("1"))
}

func TestManager_MovePlayer(t *testing.T) {
	mgr := session.NewManager()
	sess := newSession("1", "Aldric", "square")
	require.NoError(t, mgr.Add(sess))

	old, err := mgr.MovePlayer("1", "alley")
	require.NoError(t, err)
	assert.Equal(t, "square", old)
	assert.Equal(t, "alley", sess.RoomID)
	assert.False(t, mgr.AnyInRoom("square"))
	assert.True(t, mgr.AnyInRoom("alley"))

	_, err = mgr.MovePlayer("missing", "alley")
	assert.Error(t, err)
	_, err = mgr.MovePlayer("1", "")
	assert.Error(t, err)
}

func TestManager_PlayersInRoom(t *testing.T) {
	mgr := session.NewManager()
	require.NoError(t, mgr.Add(newSession("1", "Aldric", "square")))
	require.NoError(t, mgr.Add(newSession("2", "Brida", "square")))
	require.NoError(t, mgr.Add(newSession("3", "Cassia", "alley")))

	assert.Len(t, mgr.PlayersInRoom("square"), 2)
	assert.Len(t, mgr.PlayersInRoom("alley"), 1)
	assert.Empty(t, mgr.PlayersInRoom("gate"))
	assert.Equal(t, 3, mgr.PlayerCount())
	assert.Len(t, mgr.All(), 3)
}

func TestManager_FindInRoom(t *testing.T) {
	mgr := session.NewManager()
	require.NoError(t, mgr.Add(newSession("1", "Aldric", "square")))

	assert.NotNil(t, mgr.FindInRoom("square", "ald"))
	assert.NotNil(t, mgr.FindInRoom("square", "ALDRIC"))
	assert.Nil(t, mgr.FindInRoom("square", "brida"))
	assert.Nil(t, mgr.FindInRoom("alley", "ald"))
}

func TestManager_PartyMembersInRoom(t *testing.T) {
	mgr := session.NewManager()
	a := newSession("1", "Aldric", "square")
	a.PartyID = "wolves"
	b := newSession("2", "Brida", "square")
	b.PartyID = "wolves"
	c := newSession("3", "Cassia", "square")
	require.NoError(t, mgr.Add(a))
	require.NoError(t, mgr.Add(b))
	require.NoError(t, mgr.Add(c))

	members := mgr.PartyMembersInRoom("wolves", "square")
	assert.Len(t, members, 2)
	assert.Nil(t, mgr.PartyMembersInRoom("", "square"), "empty party matches nothing")
}

func TestPlayerSession_DamageAndRespawn(t *testing.T) {
	sess := newSession("1", "Aldric", "square")
	sess.Mana, sess.MaxMana = 3, 10

	sess.ApplyDamage(25)
	assert.Equal(t, 0, sess.HP)
	assert.True(t, sess.IsDead())
	sess.ApplyDamage(-5)
	assert.Equal(t, 0, sess.HP)

	sess.Respawn("square")
	assert.Equal(t, sess.MaxHP, sess.HP)
	assert.Equal(t, sess.MaxMana, sess.Mana)
	assert.False(t, sess.IsDead())
}

func TestPlayerSession_EffectiveStat(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	sess := newSession("1", "Aldric", "square")
	sess.Effects = []stats.Effect{
		{Name: "bull strength", Score: stats.Strength, Amount: 4, ExpiresAt: now.Add(time.Minute)},
	}

	assert.Equal(t, 16, sess.EffectiveStat(stats.Strength, now))
	assert.Equal(t, 12, sess.EffectiveStat(stats.Strength, now.Add(2*time.Minute)), "expired effect ignored")
	assert.Equal(t, 12, sess.EffectiveStat(stats.Dexterity, now))
}

func TestPlayerSession_Ammo(t *testing.T) {
	sess := newSession("1", "Aldric", "square")
	sess.Ammo = map[string]int{}

	assert.False(t, sess.ConsumeAmmo("arrow"))
	sess.AddAmmo("arrow", 2)
	assert.Equal(t, 2, sess.AmmoCount("arrow"))
	assert.True(t, sess.ConsumeAmmo("arrow"))
	assert.True(t, sess.ConsumeAmmo("arrow"))
	assert.False(t, sess.ConsumeAmmo("arrow"))
	sess.AddAmmo("", 5)
	sess.AddAmmo("arrow", 0)
	assert.Equal(t, 0, sess.AmmoCount("arrow"))
}

func TestPlayerSession_ArmorClass(t *testing.T) {
	sess := newSession("1", "Aldric", "square")
	assert.Equal(t, 0, sess.ArmorClass())
}
