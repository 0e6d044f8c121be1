package mob

import (
	"sync"
	"time"
)

// LairConfig holds the resolved spawn configuration for one template in
// one room.
//
// Invariant: Max >= 1; RespawnDelay == 0 means use the template default.
type LairConfig struct {
	// TemplateID is the mob template to spawn.
	TemplateID string
	// Max is the population cap: respawn is suppressed when live count >= Max.
	Max int
	// RespawnDelay overrides the template's respawn delay when non-zero.
	RespawnDelay time.Duration
}

// respawnEntry represents a single pending respawn.
type respawnEntry struct {
	templateID string
	roomID     string
	readyAt    time.Time
}

// LairManager schedules and executes lair mob respawns.
// It is safe for concurrent use.
//
// Concurrency: Tick and PopulateRoom must not be called concurrently with
// each other or with themselves. Schedule may be called from any
// goroutine. In practice both are driven by the single orchestrator tick.
type LairManager struct {
	mu        sync.RWMutex
	lairs     map[string][]LairConfig // roomID → configs
	templates map[string]*Template    // templateID → Template
	pending   []respawnEntry
}

// NewLairManager creates a LairManager from room lair configs and a
// template map.
//
// Precondition: lairs and templates may be nil (manager becomes a no-op).
// Postcondition: Returns a non-nil LairManager.
func NewLairManager(lairs map[string][]LairConfig, templates map[string]*Template) *LairManager {
	if lairs == nil {
		lairs = make(map[string][]LairConfig)
	}
	if templates == nil {
		templates = make(map[string]*Template)
	}
	return &LairManager{
		lairs:     lairs,
		templates: templates,
	}
}

// PopulateRoom enforces the population cap for each lair config in
// roomID: excess instances are removed, then new ones are spawned to fill
// the room up to exactly Max. Called once per room at startup.
//
// Precondition: roomID must be non-empty; mgr must not be nil.
// This method must not be called concurrently with Tick.
func (l *LairManager) PopulateRoom(roomID string, mgr *Manager) {
	l.mu.RLock()
	configs := append([]LairConfig(nil), l.lairs[roomID]...)
	l.mu.RUnlock()

	for _, cfg := range configs {
		// l.templates is read-only after construction; no lock required.
		tmpl, ok := l.templates[cfg.TemplateID]
		if !ok {
			continue
		}

		instances := mgr.InstancesInRoom(roomID)
		var matching []*Instance
		for _, inst := range instances {
			if inst.TemplateID == cfg.TemplateID {
				matching = append(matching, inst)
			}
		}
		for len(matching) > cfg.Max {
			last := matching[len(matching)-1]
			matching = matching[:len(matching)-1]
			_ = mgr.Remove(last.ID)
		}

		for i := len(matching); i < cfg.Max; i++ {
			if _, err := mgr.Spawn(tmpl, roomID, OriginLair); err != nil {
				// Non-fatal; the next PopulateRoom call retries.
				continue
			}
		}
	}
}

// Schedule enqueues a future respawn for templateID in roomID. The delay
// is the room override when set, otherwise the template's (defaulting to
// DefaultRespawnDelay). No-op for templates without a lair config in
// roomID, so wandering and summoned deaths never queue respawns.
//
// Postcondition: an entry is queued iff roomID has a lair config for
// templateID.
func (l *LairManager) Schedule(templateID, roomID string, now time.Time) {
	delay := l.ResolvedDelay(templateID, roomID)
	if delay <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, respawnEntry{
		templateID: templateID,
		roomID:     roomID,
		readyAt:    now.Add(delay),
	})
}

// Tick drains all entries whose readyAt <= now, checks the population cap
// for each, and spawns up to the remaining capacity.
//
// Precondition: mgr must not be nil.
// Postcondition: pending entries with readyAt <= now are consumed.
// This method must not be called concurrently with PopulateRoom.
func (l *LairManager) Tick(now time.Time, mgr *Manager) {
	l.mu.Lock()
	var ready, future []respawnEntry
	for _, e := range l.pending {
		if !e.readyAt.After(now) {
			ready = append(ready, e)
		} else {
			future = append(future, e)
		}
	}
	l.pending = future
	l.mu.Unlock()

	for _, e := range ready {
		tmpl, ok := l.templates[e.templateID]
		if !ok {
			continue
		}
		cfg, ok := l.configFor(e.roomID, e.templateID)
		if !ok {
			continue
		}
		if mgr.CountInRoom(e.roomID, e.templateID) >= cfg.Max {
			continue
		}
		_, _ = mgr.Spawn(tmpl, e.roomID, OriginLair)
	}
}

// ResolvedDelay returns the effective respawn delay for templateID in
// roomID: the room's override when non-zero, otherwise the template's.
// Returns 0 when roomID has no lair config for the template (no respawn).
//
// Postcondition: Returns >= 0.
func (l *LairManager) ResolvedDelay(templateID, roomID string) time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, cfg := range l.lairs[roomID] {
		if cfg.TemplateID != templateID {
			continue
		}
		if cfg.RespawnDelay > 0 {
			return cfg.RespawnDelay
		}
		if tmpl, ok := l.templates[templateID]; ok {
			return tmpl.ParsedRespawnDelay()
		}
		return DefaultRespawnDelay
	}
	return 0
}

// configFor finds the lair config for templateID in roomID.
// Caller must NOT hold l.mu.
func (l *LairManager) configFor(roomID, templateID string) (LairConfig, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, cfg := range l.lairs[roomID] {
		if cfg.TemplateID == templateID {
			return cfg, true
		}
	}
	return LairConfig{}, false
}
