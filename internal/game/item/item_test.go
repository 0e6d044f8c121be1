package item_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/emberfall/internal/game/item"
)

const catalogYAML = `
weapons:
  - id: shortsword
    name: shortsword
    damage: 1d6
    value: 10
  - id: longbow
    name: longbow
    damage: 1d8
    ranged: true
    ammo_type: arrow
    value: 40
armor:
  - id: leather
    name: leather armor
    armor_class: 2
    value: 15
`

func TestCatalog_LoadBytes(t *testing.T) {
	c := item.NewCatalog()
	require.NoError(t, c.LoadBytes([]byte(catalogYAML)))

	w, ok := c.Weapon("longbow")
	require.True(t, ok)
	assert.True(t, w.Ranged)
	assert.Equal(t, "arrow", w.AmmoType)

	a, ok := c.Armor("leather")
	require.True(t, ok)
	assert.Equal(t, 2, a.ArmorClass)

	_, ok = c.Weapon("halberd")
	assert.False(t, ok)
}

func TestCatalog_RejectsDuplicates(t *testing.T) {
	c := item.NewCatalog()
	require.NoError(t, c.LoadBytes([]byte(catalogYAML)))
	assert.Error(t, c.LoadBytes([]byte(catalogYAML)))
}

func TestWeapon_Validate(t *testing.T) {
	tests := []struct {
		name   string
		weapon item.Weapon
		ok     bool
	}{
		{"valid melee", item.Weapon{ID: "club", Name: "club", Damage: "1d4"}, true},
		{"no damage", item.Weapon{ID: "fist-wraps", Name: "fist wraps"}, true},
		{"missing id", item.Weapon{Name: "club"}, false},
		{"bad dice", item.Weapon{ID: "x", Name: "x", Damage: "1dsix"}, false},
		{"ranged without ammo", item.Weapon{ID: "bow", Name: "bow", Damage: "1d6", Ranged: true}, false},
	}
	for _, tc := range tests {
		err := tc.weapon.Validate()
		if tc.ok {
			assert.NoError(t, err, tc.name)
		} else {
			assert.Error(t, err, tc.name)
		}
	}
}

func TestArmor_Validate(t *testing.T) {
	assert.NoError(t, (&item.Armor{ID: "plate", Name: "plate", ArmorClass: 6}).Validate())
	assert.Error(t, (&item.Armor{ID: "plate", Name: "plate", ArmorClass: -1}).Validate())
	assert.Error(t, (&item.Armor{Name: "plate"}).Validate())
}
