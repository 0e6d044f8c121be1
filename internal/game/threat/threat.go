// Package threat tracks mob aggro: who each mob is angry at, where that
// target was last seen, and when the grudge expires.
package threat

import (
	"sync"
	"time"
)

// DefaultAggroTimeout is how long a mob stays aggressive after its last
// contact with the target.
const DefaultAggroTimeout = 30 * time.Second

// Record is one mob's current grudge.
type Record struct {
	// TargetID identifies the combatant the mob is hunting.
	TargetID string
	// TargetRoom is the target's last-known room.
	TargetRoom string
	// LastContact is the last time either side damaged the other.
	LastContact time.Time
}

// Tracker maps mob instance IDs to aggro records. Expiry is lazy: records
// older than the timeout are dropped the next time they are read.
// Safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	timeout time.Duration
	records map[string]Record
}

// NewTracker creates a Tracker with the given aggro timeout.
//
// Precondition: timeout <= 0 selects DefaultAggroTimeout.
func NewTracker(timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = DefaultAggroTimeout
	}
	return &Tracker{
		timeout: timeout,
		records: make(map[string]Record),
	}
}

// Touch records combat contact between mobID and targetID, creating or
// refreshing the mob's grudge and updating the target's last-known room.
//
// Postcondition: Target(mobID, now) returns this record until the timeout
// elapses without further contact.
func (t *Tracker) Touch(mobID, targetID, targetRoom string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[mobID] = Record{
		TargetID:    targetID,
		TargetRoom:  targetRoom,
		LastContact: now,
	}
}

// UpdateRoom refreshes the target's last-known room without refreshing
// the contact time. Used when an aggroed target moves within sight.
func (t *Tracker) UpdateRoom(mobID, targetRoom string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.records[mobID]
	if !ok || t.expiredLocked(r, now) {
		delete(t.records, mobID)
		return
	}
	r.TargetRoom = targetRoom
	t.records[mobID] = r
}

// Target returns the mob's live grudge, lazily dropping it when the
// timeout has elapsed since last contact.
//
// Postcondition: Returns (record, true) only when
// now - record.LastContact < timeout.
func (t *Tracker) Target(mobID string, now time.Time) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.records[mobID]
	if !ok {
		return Record{}, false
	}
	if t.expiredLocked(r, now) {
		delete(t.records, mobID)
		return Record{}, false
	}
	return r, true
}

// Clear drops the mob's grudge. Called when pursuit is blocked, the
// target dies, or the mob dies.
func (t *Tracker) Clear(mobID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, mobID)
}

// ClearTarget drops every grudge pointing at targetID. Called when the
// target disconnects or dies.
//
// Postcondition: No record references targetID.
func (t *Tracker) ClearTarget(targetID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for mobID, r := range t.records {
		if r.TargetID == targetID {
			delete(t.records, mobID)
		}
	}
}

// Prune drops all expired records. Called opportunistically from the tick
// so stale grudges do not accumulate for idle mobs.
func (t *Tracker) Prune(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for mobID, r := range t.records {
		if t.expiredLocked(r, now) {
			delete(t.records, mobID)
		}
	}
}

func (t *Tracker) expiredLocked(r Record, now time.Time) bool {
	return now.Sub(r.LastContact) >= t.timeout
}
