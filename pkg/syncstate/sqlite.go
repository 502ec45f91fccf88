package syncstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is the file-backed Store the single-host testbed runs on.
// Every PLC process and the simulator open the same database file; SQLite's
// own transactional guarantees serialize the per-call flag commits.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the sync database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sync database: %w", err)
	}

	// One writer at a time; the barrier only ever issues short single-row
	// statements, so contention stays bounded.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sync database unreachable: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sync (
			name TEXT PRIMARY KEY,
			flag INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS master_time (
			id INTEGER PRIMARY KEY,
			time INTEGER NOT NULL
		)`,
		`INSERT INTO master_time (id, time) VALUES (1, 0)
			ON CONFLICT(id) DO NOTHING`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Flag(ctx context.Context, name string) (bool, error) {
	var flag int
	err := s.db.QueryRowContext(ctx,
		`SELECT flag FROM sync WHERE name = ?`, name).Scan(&flag)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrUnknownPLC
	}
	if err != nil {
		return false, fmt.Errorf("failed to read sync flag: %w", err)
	}
	return flag != 0, nil
}

func (s *SQLiteStore) SetFlag(ctx context.Context, name string, flag bool) error {
	value := 0
	if flag {
		value = 1
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sync SET flag = ? WHERE name = ?`, value, name)
	if err != nil {
		return fmt.Errorf("failed to write sync flag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUnknownPLC
	}
	return nil
}

func (s *SQLiteStore) MasterClock(ctx context.Context) (int64, error) {
	var t int64
	err := s.db.QueryRowContext(ctx,
		`SELECT time FROM master_time WHERE id = 1`).Scan(&t)
	if err != nil {
		return 0, fmt.Errorf("failed to read master clock: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) EnsurePLC(ctx context.Context, name string, flag bool) error {
	value := 0
	if flag {
		value = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync (name, flag) VALUES (?, ?)
			ON CONFLICT(name) DO NOTHING`, name, value)
	if err != nil {
		return fmt.Errorf("failed to register plc: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
