// Package config provides Viper-based configuration loading for the
// Emberfall combat engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GameConfig holds the simulation loop and content settings.
type GameConfig struct {
	// TickInterval is the fixed simulation tick rate.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// ContentDir is the root of the YAML content tree (zones/, mobs/,
	// items/, spells/).
	ContentDir string `mapstructure:"content_dir"`
}

// CombatConfig tunes the combat engine's probabilities and timers.
type CombatConfig struct {
	// CritMultiplier scales critical physical damage.
	CritMultiplier float64 `mapstructure:"crit_multiplier"`
	// CastChance is the probability a spellcasting mob casts instead of
	// attacking.
	CastChance float64 `mapstructure:"cast_chance"`
	// AggroTimeout is the aggro decay window.
	AggroTimeout time.Duration `mapstructure:"aggro_timeout"`
	// FleeThreshold is the health fraction below which wanderers flee.
	FleeThreshold float64 `mapstructure:"flee_threshold"`
	// FollowChance is the probability a wanderer follows a leaving player.
	FollowChance float64 `mapstructure:"follow_chance"`
	// AmmoRecoveryChance is the per-arrow retrieval probability.
	AmmoRecoveryChance float64 `mapstructure:"ammo_recovery_chance"`
	// HealThreshold is the default health fraction below which casters
	// prefer healing spells.
	HealThreshold float64 `mapstructure:"heal_threshold"`
}

// WanderingConfig tunes the wandering mob spawner.
type WanderingConfig struct {
	// SpawnCheckInterval is the time between spawn-and-move passes.
	SpawnCheckInterval time.Duration `mapstructure:"spawn_check_interval"`
	// MaxWanderingMobs caps the world-wide wandering population.
	MaxWanderingMobs int `mapstructure:"max_wandering_mobs"`
	// SpawnChance is the per-area spawn probability each check.
	SpawnChance float64 `mapstructure:"spawn_chance"`
	// MovementChance is the per-mob movement probability each check.
	MovementChance float64 `mapstructure:"movement_chance"`
}

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Game      GameConfig      `mapstructure:"game"`
	Combat    CombatConfig    `mapstructure:"combat"`
	Wandering WanderingConfig `mapstructure:"wandering"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWandering(c.Wandering); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.TickInterval < 100*time.Millisecond {
		errs = append(errs, fmt.Sprintf("game.tick_interval must be >= 100ms, got %s", g.TickInterval))
	}
	if g.ContentDir == "" {
		errs = append(errs, "game.content_dir must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.CritMultiplier < 1 {
		errs = append(errs, fmt.Sprintf("combat.crit_multiplier must be >= 1, got %g", c.CritMultiplier))
	}
	chances := map[string]float64{
		"combat.cast_chance":          c.CastChance,
		"combat.flee_threshold":       c.FleeThreshold,
		"combat.follow_chance":        c.FollowChance,
		"combat.ammo_recovery_chance": c.AmmoRecoveryChance,
		"combat.heal_threshold":       c.HealThreshold,
	}
	for name, v := range chances {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("%s must be in [0, 1], got %g", name, v))
		}
	}
	if c.AggroTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("combat.aggro_timeout must be >= 1s, got %s", c.AggroTimeout))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateWandering(w WanderingConfig) error {
	var errs []string
	if w.SpawnCheckInterval < time.Second {
		errs = append(errs, fmt.Sprintf("wandering.spawn_check_interval must be >= 1s, got %s", w.SpawnCheckInterval))
	}
	if w.MaxWanderingMobs < 0 {
		errs = append(errs, fmt.Sprintf("wandering.max_wandering_mobs must be >= 0, got %d", w.MaxWanderingMobs))
	}
	if w.SpawnChance < 0 || w.SpawnChance > 1 {
		errs = append(errs, fmt.Sprintf("wandering.spawn_chance must be in [0, 1], got %g", w.SpawnChance))
	}
	if w.MovementChance < 0 || w.MovementChance > 1 {
		errs = append(errs, fmt.Sprintf("wandering.movement_chance must be in [0, 1], got %g", w.MovementChance))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with EMBERFALL_ prefix
	v.SetEnvPrefix("EMBERFALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults creates a Viper instance carrying only the defaults, for tests
// and tooling that need a valid baseline config.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "emberfall")
	v.SetDefault("database.password", "emberfall")
	v.SetDefault("database.name", "emberfall")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("game.tick_interval", "1s")
	v.SetDefault("game.content_dir", "content")

	v.SetDefault("combat.crit_multiplier", 2.0)
	v.SetDefault("combat.cast_chance", 0.7)
	v.SetDefault("combat.aggro_timeout", "30s")
	v.SetDefault("combat.flee_threshold", 0.25)
	v.SetDefault("combat.follow_chance", 0.3)
	v.SetDefault("combat.ammo_recovery_chance", 0.5)
	v.SetDefault("combat.heal_threshold", 0.3)

	v.SetDefault("wandering.spawn_check_interval", "30s")
	v.SetDefault("wandering.max_wandering_mobs", 5)
	v.SetDefault("wandering.spawn_chance", 0.3)
	v.SetDefault("wandering.movement_chance", 0.2)
}
