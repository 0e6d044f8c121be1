package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/emberfall/internal/game/combat"
	"github.com/cory-johannsen/emberfall/internal/game/dice"
)

func TestMelee_Unarmed(t *testing.T) {
	// STR 10 → base 5; unarmed draw Intn(3)=1 → 2; crit draw fails.
	src := &seqSource{vals: []int{1, fail}}
	res := combat.Melee(10, "", false, nil, 0, src)
	assert.Equal(t, 7, res.Amount)
	assert.False(t, res.Critical)
	assert.Equal(t, "physical", res.Type)
}

func TestMelee_WeaponDice(t *testing.T) {
	// STR 14 → base 7; 1d6 draw Intn(6)=5 → 6; no crit.
	src := &seqSource{vals: []int{5, fail}}
	res := combat.Melee(14, "1d6", false, nil, 0, src)
	assert.Equal(t, 13, res.Amount)
}

func TestMelee_Critical(t *testing.T) {
	// STR 10 → 5; unarmed 2; crit draw passes → (5+2)*2 = 14.
	src := &seqSource{vals: []int{1, pass}}
	res := combat.Melee(10, "", false, nil, 0, src)
	assert.Equal(t, 14, res.Amount)
	assert.True(t, res.Critical)
}

func TestMelee_CustomCritMultiplier(t *testing.T) {
	src := &seqSource{vals: []int{1, pass}}
	res := combat.Melee(10, "", false, nil, 3.0, src)
	assert.Equal(t, 21, res.Amount)
}

// TestMelee_RangedWeaponHalved verifies that swinging a ranged weapon in
// melee contributes only half its dice.
func TestMelee_RangedWeaponHalved(t *testing.T) {
	// STR 10 → 5; 1d8 draw Intn(8)=7 → 8, halved to 4; no crit.
	src := &seqSource{vals: []int{7, fail}}
	res := combat.Melee(10, "1d8", true, nil, 0, src)
	assert.Equal(t, 9, res.Amount)
}

func TestMelee_NaturalAttackDice(t *testing.T) {
	// STR 12 → 6; 2d4 draws 2,3 → 3+4=7; no crit.
	src := &seqSource{vals: []int{2, 3, fail}}
	res := combat.Melee(12, "", false, &combat.NaturalAttack{Damage: "2d4"}, 0, src)
	assert.Equal(t, 13, res.Amount)
}

func TestMelee_NaturalAttackRange(t *testing.T) {
	// STR 12 → 6; range [3,7] draw Intn(5)=4 → 7; no crit.
	src := &seqSource{vals: []int{4, fail}}
	res := combat.Melee(12, "", false, &combat.NaturalAttack{Min: 3, Max: 7}, 0, src)
	assert.Equal(t, 13, res.Amount)
}

func TestMelee_NaturalAttackEmptyFallsBackTo1d4(t *testing.T) {
	// STR 10 → 5; 1d4 draw Intn(4)=0 → 1; no crit.
	src := &seqSource{vals: []int{0, fail}}
	res := combat.Melee(10, "", false, &combat.NaturalAttack{}, 0, src)
	assert.Equal(t, 6, res.Amount)
}

// TestMelee_MalformedWeaponDiceFallsBack verifies the 1d6 degradation for
// broken content data.
func TestMelee_MalformedWeaponDiceFallsBack(t *testing.T) {
	// STR 10 → 5; fallback 1d6 draw Intn(6)=2 → 3; no crit.
	src := &seqSource{vals: []int{2, fail}}
	res := combat.Melee(10, "oops", false, nil, 0, src)
	assert.Equal(t, 8, res.Amount)
}

func TestRanged_UsesDexterity(t *testing.T) {
	// DEX 16 → base 8; 1d8 draw Intn(8)=3 → 4; no crit.
	src := &seqSource{vals: []int{3, fail}}
	res := combat.Ranged(16, "1d8", 0, src)
	assert.Equal(t, 12, res.Amount)
}

func TestSpell_Damage(t *testing.T) {
	// INT 14 → 7; level 2 → 6; 1d6 draw Intn(6)=4 → 5; no crit → 18.
	src := &seqSource{vals: []int{4, fail}}
	res := combat.Spell(14, 2, src)
	assert.Equal(t, 18, res.Amount)
	assert.Equal(t, "magical", res.Type)
}

func TestSpell_Critical(t *testing.T) {
	// 7 + 6 + 5 = 18, ×1.5 = 27.
	src := &seqSource{vals: []int{4, pass}}
	res := combat.Spell(14, 2, src)
	assert.Equal(t, 27, res.Amount)
	assert.True(t, res.Critical)
}

func TestApplyArmor(t *testing.T) {
	tests := []struct{ damage, armor, want int }{
		{10, 0, 10},
		{10, 3, 7},
		{10, 8, 2},  // at the cap
		{10, 20, 2}, // beyond the cap, still 80%
		{1, 8, 1},   // floor
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, combat.ApplyArmor(tc.damage, tc.armor), "damage=%d armor=%d", tc.damage, tc.armor)
	}
}

func TestCrossRoomDamage(t *testing.T) {
	assert.Equal(t, 9, combat.CrossRoomDamage(10))
	assert.Equal(t, 1, combat.CrossRoomDamage(1))
}

func TestDamage_Property_AlwaysAtLeastOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		str := rapid.IntRange(0, 30).Draw(rt, "str")
		seed := rapid.Int64().Draw(rt, "seed")
		src := dice.NewSeededSource(seed)
		assert.GreaterOrEqual(rt, combat.Melee(str, "1d6", false, nil, 0, src).Amount, 1)
		assert.GreaterOrEqual(rt, combat.Ranged(str, "", 0, src).Amount, 1)
		assert.GreaterOrEqual(rt, combat.Spell(str, 1, src).Amount, 1)
	})
}

func TestApplyArmor_Property_NeverBelowOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		damage := rapid.IntRange(1, 500).Draw(rt, "damage")
		armor := rapid.IntRange(0, 50).Draw(rt, "armor")
		out := combat.ApplyArmor(damage, armor)
		assert.GreaterOrEqual(rt, out, 1)
		assert.LessOrEqual(rt, out, damage)
	})
}
