// Package main provides the Emberfall combat server binary: it loads the
// YAML content tree, populates the world, and drives the simulation tick.
package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/emberfall/internal/config"
	"github.com/cory-johannsen/emberfall/internal/game/ability"
	"github.com/cory-johannsen/emberfall/internal/game/combat"
	"github.com/cory-johannsen/emberfall/internal/game/dice"
	"github.com/cory-johannsen/emberfall/internal/game/item"
	"github.com/cory-johannsen/emberfall/internal/game/loot"
	"github.com/cory-johannsen/emberfall/internal/game/mob"
	"github.com/cory-johannsen/emberfall/internal/game/session"
	"github.com/cory-johannsen/emberfall/internal/game/spell"
	"github.com/cory-johannsen/emberfall/internal/game/threat"
	"github.com/cory-johannsen/emberfall/internal/game/world"
	"github.com/cory-johannsen/emberfall/internal/gameserver"
	"github.com/cory-johannsen/emberfall/internal/observability"
	"github.com/cory-johannsen/emberfall/internal/server"
	"github.com/cory-johannsen/emberfall/internal/storage/postgres"
)

// persistInterval is the period of the character state flusher.
const persistInterval = 30 * time.Second

// gameHourInterval is the real time per game-clock hour.
const gameHourInterval = 2 * time.Minute

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	src := dice.NewCryptoSource()

	// Load the content tree.
	contentStart := time.Now()
	zones, err := world.LoadZonesFromDir(filepath.Join(cfg.Game.ContentDir, "zones"))
	if err != nil {
		logger.Fatal("loading zones", zap.Error(err))
	}
	worldMgr, err := world.NewManager(zones)
	if err != nil {
		logger.Fatal("creating world manager", zap.Error(err))
	}

	catalog := item.NewCatalog()
	if err := catalog.LoadDir(filepath.Join(cfg.Game.ContentDir, "items")); err != nil {
		logger.Fatal("loading item catalog", zap.Error(err))
	}

	templates, err := mob.LoadTemplates(filepath.Join(cfg.Game.ContentDir, "mobs"))
	if err != nil {
		logger.Fatal("loading mob templates", zap.Error(err))
	}
	templatesByID, err := mob.TemplatesByID(templates)
	if err != nil {
		logger.Fatal("indexing mob templates", zap.Error(err))
	}

	spells := spell.NewLibrary()
	if err := spells.LoadDir(filepath.Join(cfg.Game.ContentDir, "spells")); err != nil {
		logger.Fatal("loading spell library", zap.Error(err))
	}

	logger.Info("content loaded",
		zap.Int("zones", worldMgr.ZoneCount()),
		zap.Int("rooms", worldMgr.RoomCount()),
		zap.Int("mob_templates", len(templates)),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Connect to PostgreSQL for character persistence.
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	charRepo := postgres.NewCharacterRepository(pool.DB())

	// Build the combat stores.
	sessions := session.NewManager()
	outbox := session.NewOutbox()
	mobs := mob.NewManager(catalog, src)
	lairs := mob.NewLairManager(mob.LairConfigsFromZones(zones), templatesByID)
	wander := mob.NewWanderSpawner(mob.WanderConfig{
		CheckInterval:  cfg.Wandering.SpawnCheckInterval,
		MaxWandering:   cfg.Wandering.MaxWanderingMobs,
		SpawnChance:    cfg.Wandering.SpawnChance,
		MovementChance: cfg.Wandering.MovementChance,
	}, worldMgr, mobs, templates, src)

	orc := gameserver.NewOrchestrator(gameserver.Deps{
		Config:    cfg.Combat,
		Logger:    logger,
		Source:    src,
		World:     worldMgr,
		Sessions:  sessions,
		Mobs:      mobs,
		Outbox:    outbox,
		Economy:   combat.NewAttackEconomy(),
		Threat:    threat.NewTracker(cfg.Combat.AggroTimeout),
		Ledger:    loot.NewDamageLedger(),
		Spells:    spells,
		Abilities: ability.NewEngine(),
		Templates: templatesByID,
		Lairs:     lairs,
		Wander:    wander,
	})

	// Seed every lair room before the first tick.
	for _, zone := range worldMgr.AllZones() {
		for _, room := range zone.Rooms {
			if len(room.Lairs) > 0 {
				lairs.PopulateRoom(room.ID, mobs)
			}
		}
	}
	logger.Info("lairs populated", zap.Int("mobs", len(mobs.All())))

	// Delivery sink; a network transport replaces this callback.
	deliver := func(uid, line string) {
		logger.Debug("outbound message",
			zap.String("player", uid),
			zap.String("line", line),
		)
	}

	ticks := gameserver.NewTickManager(cfg.Game.TickInterval)
	ticks.Register("combat", func(now time.Time) {
		orc.Tick(now)
		outbox.Flush(deliver)
	})

	clock := gameserver.NewGameClock(8, gameHourInterval)
	hours := make(chan gameserver.GameHour, 1)
	clock.Subscribe(hours)

	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("simulation", &server.FuncService{
		StartFn: func() error {
			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error { return ticks.Run(gctx) })

			g.Go(func() error {
				stopClock := clock.Start()
				defer stopClock()
				for {
					select {
					case <-gctx.Done():
						return nil
					case h := <-hours:
						uids := make([]string, 0, sessions.PlayerCount())
						for _, p := range sessions.All() {
							uids = append(uids, p.UID)
						}
						outbox.QueueAll(uids,
							"The town bells toll "+h.String()+" ("+string(h.Period())+").")
					}
				}
			})

			g.Go(func() error {
				ticker := time.NewTicker(persistInterval)
				defer ticker.Stop()
				for {
					select {
					case <-gctx.Done():
						return nil
					case <-ticker.C:
						persistSessions(gctx, logger, sessions, charRepo)
					}
				}
			})

			return g.Wait()
		},
		StopFn: func() {},
	})

	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			for {
				time.Sleep(30 * time.Second)
				if err := pool.Health(ctx, 5*time.Second); err != nil {
					logger.Warn("database health check failed", zap.Error(err))
				}
			}
		},
		StopFn: func() {
			pool.Close()
		},
	})

	logger.Info("game server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Duration("tick_interval", cfg.Game.TickInterval),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// persistSessions writes the mutable state of every session bound to a
// database character.
func persistSessions(ctx context.Context, logger *zap.Logger, sessions *session.Manager, repo *postgres.CharacterRepository) {
	for _, p := range sessions.All() {
		if p.CharacterID == 0 {
			continue
		}
		state := postgres.State{
			Location:    p.RoomID,
			CurrentHP:   p.HP,
			CurrentMana: p.Mana,
			Gold:        p.Gold,
			Experience:  p.Experience,
			Level:       p.Level,
		}
		if err := repo.SaveState(ctx, p.CharacterID, state); err != nil {
			logger.Warn("persisting character state",
				zap.Int64("character", p.CharacterID),
				zap.Error(err),
			)
		}
	}
}
