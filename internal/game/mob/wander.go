package mob

import (
	"math"
	"time"

	"github.com/cory-johannsen/emberfall/internal/game/dice"
	"github.com/cory-johannsen/emberfall/internal/game/world"
)

// Wandering spawner defaults.
const (
	DefaultSpawnCheckInterval = 30 * time.Second
	DefaultMaxWanderingMobs   = 5
	DefaultSpawnChance        = 0.3
	DefaultMovementChance     = 0.2
)

// chanceScale is the resolution of spawn and movement chance rolls.
const chanceScale = 10000

// WanderConfig tunes the wandering spawner. Zero values select defaults.
type WanderConfig struct {
	// CheckInterval is the time between spawn-and-move passes.
	CheckInterval time.Duration
	// MaxWandering caps the number of live wandering mobs world-wide.
	MaxWandering int
	// SpawnChance is the per-area probability of a spawn each check.
	SpawnChance float64
	// MovementChance is the per-mob probability of moving each check.
	MovementChance float64
}

func (c WanderConfig) withDefaults() WanderConfig {
	if c.CheckInterval <= 0 {
		c.CheckInterval = DefaultSpawnCheckInterval
	}
	if c.MaxWandering <= 0 {
		c.MaxWandering = DefaultMaxWanderingMobs
	}
	if c.SpawnChance <= 0 {
		c.SpawnChance = DefaultSpawnChance
	}
	if c.MovementChance <= 0 {
		c.MovementChance = DefaultMovementChance
	}
	return c
}

// WanderSpawner populates wandering areas and drifts their mobs around.
// Driven by the orchestrator tick; not safe for concurrent use.
type WanderSpawner struct {
	cfg       WanderConfig
	world     *world.Manager
	mobs      *Manager
	templates map[string][]*Template // areaID → wandering templates
	src       dice.Source
	lastCheck time.Time
}

// NewWanderSpawner builds a spawner over the wandering templates in
// templates. Non-wandering templates are ignored.
//
// Precondition: w, mgr, and src must be non-nil.
func NewWanderSpawner(cfg WanderConfig, w *world.Manager, mgr *Manager, templates []*Template, src dice.Source) *WanderSpawner {
	byArea := make(map[string][]*Template)
	for _, t := range templates {
		if !t.Wandering {
			continue
		}
		for _, area := range t.Areas {
			byArea[area] = append(byArea[area], t)
		}
	}
	return &WanderSpawner{
		cfg:       cfg.withDefaults(),
		world:     w,
		mobs:      mgr,
		templates: byArea,
		src:       src,
	}
}

// Tick runs one spawn-and-move pass when the check interval has elapsed.
// playersIn reports whether any player occupies a room; wanderers hold
// still while watched.
//
// Postcondition: at most one pass runs per CheckInterval; the world-wide
// wandering population never exceeds MaxWandering.
func (s *WanderSpawner) Tick(now time.Time, playersIn func(roomID string) bool) {
	if !s.lastCheck.IsZero() && now.Sub(s.lastCheck) < s.cfg.CheckInterval {
		return
	}
	s.lastCheck = now

	s.spawn(now)
	s.move(playersIn)
}

// spawn rolls each area's spawn chance and places one weighted-pool mob
// in a random room of the area, up to the global cap.
func (s *WanderSpawner) spawn(_ time.Time) {
	for area, pool := range s.templates {
		if s.mobs.CountByOrigin(OriginWandering) >= s.cfg.MaxWandering {
			return
		}
		if s.src.Intn(chanceScale) >= int(math.Round(s.cfg.SpawnChance*chanceScale)) {
			continue
		}
		rooms := s.world.RoomsInArea(area)
		if len(rooms) == 0 || len(pool) == 0 {
			continue
		}
		tmpl := pickWeighted(pool, s.src)
		room := rooms[s.src.Intn(len(rooms))]
		if inst, err := s.mobs.Spawn(tmpl, room.ID, OriginWandering); err == nil {
			inst.AreaID = area
		}
	}
}

// move rolls each wanderer's movement chance and drifts it one room,
// staying inside its area.
func (s *WanderSpawner) move(playersIn func(roomID string) bool) {
	for _, inst := range s.mobs.All() {
		if inst.Origin != OriginWandering || inst.IsDead() {
			continue
		}
		if playersIn != nil && playersIn(inst.RoomID) {
			continue
		}
		if s.src.Intn(chanceScale) >= int(math.Round(s.cfg.MovementChance*chanceScale)) {
			continue
		}
		exits := s.exitsInArea(inst.RoomID, inst.AreaID)
		if len(exits) == 0 {
			continue
		}
		next := exits[s.src.Intn(len(exits))]
		_ = s.mobs.Move(inst.ID, next.TargetRoom)
	}
}

// exitsInArea filters a room's mob-passable exits to those staying in area.
func (s *WanderSpawner) exitsInArea(roomID, area string) []world.Exit {
	var out []world.Exit
	for _, e := range s.world.MobExits(roomID) {
		target, ok := s.world.GetRoom(e.TargetRoom)
		if !ok || target.AreaID != area {
			continue
		}
		out = append(out, e)
	}
	return out
}

// pickWeighted draws one template from the pool proportionally to
// SpawnWeight (zero counts as 1).
func pickWeighted(pool []*Template, src dice.Source) *Template {
	total := 0
	for _, t := range pool {
		total += weightOf(t)
	}
	pick := src.Intn(total)
	for _, t := range pool {
		pick -= weightOf(t)
		if pick < 0 {
			return t
		}
	}
	return pool[len(pool)-1]
}

func weightOf(t *Template) int {
	if t.SpawnWeight <= 0 {
		return 1
	}
	return t.SpawnWeight
}

// LairConfigsFromZones extracts the per-room lair configs declared in the
// loaded world content.
//
// Precondition: zones must have passed validation (lair durations parse).
func LairConfigsFromZones(zones []*world.Zone) map[string][]LairConfig {
	configs := make(map[string][]LairConfig)
	for _, z := range zones {
		for _, room := range z.Rooms {
			for _, lair := range room.Lairs {
				cfg := LairConfig{TemplateID: lair.Template, Max: lair.Count}
				if lair.RespawnAfter != "" {
					if d, err := time.ParseDuration(lair.RespawnAfter); err == nil {
						cfg.RespawnDelay = d
					}
				}
				configs[room.ID] = append(configs[room.ID], cfg)
			}
		}
	}
	return configs
}
