// Command migrate applies the schema under migrations/ to the Emberfall
// database. It reads the same config file as the game server and touches
// only the database section, so it can run against a config whose other
// sections are incomplete.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/viper"

	"github.com/cory-johannsen/emberfall/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	configPath := flag.String("config", "configs/dev.yaml", "server config file; only database.* is read")
	direction := flag.String("direction", "up", "up or down")
	steps := flag.Int("steps", 0, "how many migrations to apply; 0 means all")
	flag.Parse()

	v := viper.New()
	v.SetConfigFile(*configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading %s: %w", *configPath, err)
	}
	sub := v.Sub("database")
	if sub == nil {
		return fmt.Errorf("%s has no database section", *configPath)
	}
	var db config.DatabaseConfig
	if err := sub.Unmarshal(&db); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	m, err := migrate.New("file://migrations", db.DSN())
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	defer m.Close()

	switch *direction {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	default:
		return fmt.Errorf("direction %q: want up or down", *direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrating %s: %w", *direction, err)
	}

	version, dirty, verr := m.Version()
	switch {
	case errors.Is(verr, migrate.ErrNilVersion):
		fmt.Println("schema is empty")
	case verr != nil:
		return fmt.Errorf("reading schema version: %w", verr)
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Printf("schema already at version %d (dirty=%v)\n", version, dirty)
	default:
		fmt.Printf("schema now at version %d (dirty=%v)\n", version, dirty)
	}
	return nil
}
