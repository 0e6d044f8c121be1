// Package postgres persists Emberfall characters in PostgreSQL through
// a pgx v5 connection pool. The simulation never blocks on this package;
// persistence runs on its own loop off the tick path.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/emberfall/internal/config"
)

// Pool owns the pgx pool shared by every repository.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool dials PostgreSQL with cfg's DSN and pool sizing, and verifies
// the connection with a ping before handing the pool out.
//
// Precondition: cfg must hold a routable DSN.
// Postcondition: The returned Pool is ready for queries.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// Health pings the database, bounded by timeout. The server's health
// loop calls this between character saves.
//
// Precondition: The pool must not be closed.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close drains the pool. Call once, at shutdown, after the persistence
// loop has stopped.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB exposes the raw pool for repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
