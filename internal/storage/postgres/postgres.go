// Package postgres provides the PostgreSQL tileset catalog using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/tileset/internal/config"
)

// Pool is the catalog's connection pool.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool creates a new PostgreSQL connection pool from the given configuration.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error. The pool is ready
// for queries upon successful return.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// ErrSchemaMissing is returned by Health when the database is reachable but
// the catalog migrations have not been applied.
var ErrSchemaMissing = errors.New("tileset catalog schema missing")

// Health checks that the catalog is usable within the given timeout: the
// database answers and the tilesets table exists.
//
// Precondition: The pool must not be closed.
// Postcondition: Returns nil, ErrSchemaMissing, or the connection error.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	var present bool
	if err := p.pool.QueryRow(ctx, `SELECT to_regclass('public.tilesets') IS NOT NULL`).Scan(&present); err != nil {
		return fmt.Errorf("checking catalog schema: %w", err)
	}
	if !present {
		return fmt.Errorf("%w: run cmd/migrate first", ErrSchemaMissing)
	}
	return nil
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool for use by repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
