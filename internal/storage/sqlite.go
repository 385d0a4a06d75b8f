package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps records in a single-table SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select record %s: %w", key, err)
	}
	return []byte(value), true, nil
}

const upsertSQLite = `INSERT INTO records (key, value, updated_at, version)
VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'), 1)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at,
    version = records.version + 1`

func (s *SQLiteStore) Save(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertSQLite, key, string(value)); err != nil {
		return fmt.Errorf("upsert record %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) SaveBatch(ctx context.Context, values map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range sortedKeys(values) {
		if _, err := tx.ExecContext(ctx, upsertSQLite, key, string(values[key])); err != nil {
			return fmt.Errorf("upsert record %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Version sums the per-record write counters.
func (s *SQLiteStore) Version(ctx context.Context) (int64, error) {
	var v int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(version), 0) FROM records`).Scan(&v); err != nil {
		return 0, fmt.Errorf("select records version: %w", err)
	}
	return v, nil
}

func sortedKeys(values map[string][]byte) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
