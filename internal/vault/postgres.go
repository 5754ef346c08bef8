package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of *pgxpool.Pool used by PostgresStore.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps blobs in a single key/value table.
type PostgresStore struct {
	db Querier
}

// NewPostgresStore ensures the vault table exists.
func NewPostgresStore(ctx context.Context, db Querier) (*PostgresStore, error) {
	const ddl = `CREATE TABLE IF NOT EXISTS vault_blobs (
        key TEXT PRIMARY KEY,
        blob TEXT NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`
	if _, err := db.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create vault table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Get fetches the blob stored under key.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var blob string
	if err := s.db.QueryRow(ctx, `SELECT blob FROM vault_blobs WHERE key = $1`, key).Scan(&blob); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(blob), nil
}

// Put upserts the blob stored under key.
func (s *PostgresStore) Put(ctx context.Context, key string, blob []byte) error {
	_, err := s.db.Exec(ctx, `INSERT INTO vault_blobs (key, blob, updated_at) VALUES ($1, $2, now())
        ON CONFLICT (key) DO UPDATE SET blob = EXCLUDED.blob, updated_at = EXCLUDED.updated_at`, key, string(blob))
	return err
}
