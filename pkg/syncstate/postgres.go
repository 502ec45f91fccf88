package syncstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is a PostgreSQL-backed Store for testbeds whose PLCs run on
// separate hosts and cannot share a database file.
type PGStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres creates a PostgreSQL-backed sync store.
func OpenPostgres(ctx context.Context, databaseURL string) (*PGStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// One PLC issues at most a couple of statements per iteration
	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PGStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

func (s *PGStore) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sync (
			name TEXT PRIMARY KEY,
			flag INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS master_time (
			id INTEGER PRIMARY KEY,
			time BIGINT NOT NULL
		)`,
		`INSERT INTO master_time (id, time) VALUES (1, 0)
			ON CONFLICT (id) DO NOTHING`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PGStore) Flag(ctx context.Context, name string) (bool, error) {
	var flag int
	err := s.pool.QueryRow(ctx,
		`SELECT flag FROM sync WHERE name = $1`, name).Scan(&flag)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrUnknownPLC
	}
	if err != nil {
		return false, fmt.Errorf("failed to read sync flag: %w", err)
	}
	return flag != 0, nil
}

func (s *PGStore) SetFlag(ctx context.Context, name string, flag bool) error {
	value := 0
	if flag {
		value = 1
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE sync SET flag = $1 WHERE name = $2`, value, name)
	if err != nil {
		return fmt.Errorf("failed to write sync flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUnknownPLC
	}
	return nil
}

func (s *PGStore) MasterClock(ctx context.Context) (int64, error) {
	var t int64
	err := s.pool.QueryRow(ctx,
		`SELECT time FROM master_time WHERE id = 1`).Scan(&t)
	if err != nil {
		return 0, fmt.Errorf("failed to read master clock: %w", err)
	}
	return t, nil
}

func (s *PGStore) EnsurePLC(ctx context.Context, name string, flag bool) error {
	value := 0
	if flag {
		value = 1
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sync (name, flag) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING`, name, value)
	if err != nil {
		return fmt.Errorf("failed to register plc: %w", err)
	}
	return nil
}

func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}
