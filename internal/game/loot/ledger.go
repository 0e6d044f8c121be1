// Package loot distributes kill rewards: experience by damage ledger,
// party gold splits, and loot table drops.
package loot

import "sync"

// DamageLedger records how much damage each attacker has been credited
// against each victim. Credit is capped so a victim's total never exceeds
// its maximum health — overkill earns nothing extra.
// Safe for concurrent use.
type DamageLedger struct {
	mu      sync.Mutex
	credits map[string]map[string]int // victimID → attackerID → credited damage
	totals  map[string]int            // victimID → total credited
}

// NewDamageLedger creates an empty ledger.
func NewDamageLedger() *DamageLedger {
	return &DamageLedger{
		credits: make(map[string]map[string]int),
		totals:  make(map[string]int),
	}
}

// Record credits damage from attackerID against victimID and returns the
// amount actually credited after the overkill cap.
//
// Precondition: maxHealth must be >= 1.
// Postcondition: Total credited damage for victimID never exceeds
// maxHealth; returns 0 once the victim's health pool is fully accounted.
func (l *DamageLedger) Record(victimID, attackerID string, damage, maxHealth int) int {
	if damage <= 0 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	room := maxHealth - l.totals[victimID]
	if room <= 0 {
		return 0
	}
	credit := damage
	if credit > room {
		credit = room
	}

	byAttacker, ok := l.credits[victimID]
	if !ok {
		byAttacker = make(map[string]int)
		l.credits[victimID] = byAttacker
	}
	byAttacker[attackerID] += credit
	l.totals[victimID] += credit
	return credit
}

// Credits returns a copy of the per-attacker credited damage for victimID.
//
// Postcondition: Returns a non-nil map (may be empty).
func (l *DamageLedger) Credits(victimID string) map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.credits[victimID]))
	for attacker, dmg := range l.credits[victimID] {
		out[attacker] = dmg
	}
	return out
}

// TotalCredited returns the capped damage total recorded against victimID.
func (l *DamageLedger) TotalCredited(victimID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totals[victimID]
}

// Drop discards the ledger for victimID. Called after rewards are paid.
func (l *DamageLedger) Drop(victimID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.credits, victimID)
	delete(l.totals, victimID)
}
