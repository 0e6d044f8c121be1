package loot

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/cory-johannsen/emberfall/internal/game/dice"
)

// chanceScale is the resolution of drop-chance rolls.
const chanceScale = 10000

// Drop defines a single item entry in a loot table with a drop chance.
type Drop struct {
	ItemID string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
	MinQty int     `yaml:"min_qty"`
	MaxQty int     `yaml:"max_qty"`
}

// Table defines the chance-based drops for a mob template. Guaranteed
// drops (a humanoid's equipped weapon and armor) are appended by the
// caller, not listed here.
type Table struct {
	Items []Drop `yaml:"items"`
}

// Validate checks that the loot table satisfies its invariants.
//
// Postcondition: Returns nil iff all item constraints hold; an empty
// table is valid.
func (t *Table) Validate() error {
	for i, d := range t.Items {
		if d.ItemID == "" {
			return fmt.Errorf("loot table: item[%d] must have a non-empty item id", i)
		}
		if d.Chance <= 0 || d.Chance > 1.0 {
			return fmt.Errorf("loot table: item[%d] chance must be in (0, 1.0], got %f", i, d.Chance)
		}
		if d.MinQty < 1 {
			return fmt.Errorf("loot table: item[%d] min_qty must be >= 1, got %d", i, d.MinQty)
		}
		if d.MinQty > d.MaxQty {
			return fmt.Errorf("loot table: item[%d] min_qty (%d) must be <= max_qty (%d)", i, d.MinQty, d.MaxQty)
		}
	}
	return nil
}

// Item represents a single dropped item instance.
type Item struct {
	ItemDefID  string
	InstanceID string
	Quantity   int
}

// Result holds the generated drops from a single kill.
type Result struct {
	Items []Item
}

// Generate rolls each table entry independently against src.
//
// Precondition: t must have passed Validate; src must be non-nil.
// Postcondition: Each dropped item's Quantity is in [MinQty, MaxQty] and
// carries a fresh instance ID.
func (t *Table) Generate(src dice.Source) Result {
	var result Result
	for _, d := range t.Items {
		if src.Intn(chanceScale) >= int(math.Round(d.Chance*chanceScale)) {
			continue
		}
		result.Items = append(result.Items, Item{
			ItemDefID:  d.ItemID,
			InstanceID: uuid.New().String(),
			Quantity:   dice.RollRange(d.MinQty, d.MaxQty, src),
		})
	}
	return result
}

// AddGuaranteed appends an always-dropped item (equipped gear) to the result.
//
// Precondition: itemID must be non-empty.
func (r *Result) AddGuaranteed(itemID string) {
	if itemID == "" {
		return
	}
	r.Items = append(r.Items, Item{
		ItemDefID:  itemID,
		InstanceID: uuid.New().String(),
		Quantity:   1,
	})
}

// Merge appends another result's items (lair bonus rolls).
func (r *Result) Merge(other Result) {
	r.Items = append(r.Items, other.Items...)
}
