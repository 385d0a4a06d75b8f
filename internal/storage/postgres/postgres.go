// Package postgres stores tracker records in a PostgreSQL table through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `CREATE TABLE IF NOT EXISTS records (
    key        TEXT PRIMARY KEY,
    value      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const addVersion = `ALTER TABLE records ADD COLUMN IF NOT EXISTS version BIGINT NOT NULL DEFAULT 0`

const upsert = `INSERT INTO records (key, value, updated_at, version)
VALUES ($1, $2, now(), 1)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at,
    version = records.version + 1`

type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and ensures the records table exists.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	for _, stmt := range []string{schema, addVersion} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value::text FROM records WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select record %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	if _, err := s.pool.Exec(ctx, upsert, key, string(value)); err != nil {
		return fmt.Errorf("upsert record %s: %w", key, err)
	}
	return nil
}

func (s *Store) SaveBatch(ctx context.Context, values map[string][]byte) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, key := range keys {
			batch.Queue(upsert, key, string(values[key]))
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
		return nil
	})
}

// Version sums the per-record write counters.
func (s *Store) Version(ctx context.Context) (int64, error) {
	var v int64
	if err := s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(version), 0)::bigint FROM records`).Scan(&v); err != nil {
		return 0, fmt.Errorf("select records version: %w", err)
	}
	return v, nil
}
