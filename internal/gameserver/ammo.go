package gameserver

import "sync"

// SpentAmmoRegistry tracks ammunition that has landed in a room after a
// ranged attack, by kind. Players retrieve from it with a per-round
// recovery roll; the rest is lost to the floorboards.
// Safe for concurrent use.
type SpentAmmoRegistry struct {
	mu     sync.Mutex
	counts map[string]map[string]int // roomID → ammo kind → count
}

// NewSpentAmmoRegistry creates an empty registry.
func NewSpentAmmoRegistry() *SpentAmmoRegistry {
	return &SpentAmmoRegistry{counts: make(map[string]map[string]int)}
}

// Add records n spent rounds of kind in roomID.
//
// Precondition: roomID and kind must be non-empty; n <= 0 is ignored.
func (r *SpentAmmoRegistry) Add(roomID, kind string, n int) {
	if roomID == "" || kind == "" || n <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts[roomID] == nil {
		r.counts[roomID] = make(map[string]int)
	}
	r.counts[roomID][kind] += n
}

// Count returns the spent rounds of kind lying in roomID.
func (r *SpentAmmoRegistry) Count(roomID, kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[roomID][kind]
}

// TakeAll removes and returns every spent round in roomID by kind.
//
// Postcondition: Returns a non-nil map (may be empty); the room is empty
// afterwards.
func (r *SpentAmmoRegistry) TakeAll(roomID string) map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.counts[roomID]
	delete(r.counts, roomID)
	if out == nil {
		out = make(map[string]int)
	}
	return out
}
