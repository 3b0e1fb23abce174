package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// KVRepo stores opaque JSON blobs by key.
type KVRepo struct {
	db dbtx
}

func NewKVRepo(db dbtx) *KVRepo {
	return &KVRepo{db: db}
}

// Get returns (nil, nil) for a missing key.
func (r *KVRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var v string
	if err := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("kv get: %w", err)
	}
	return []byte(v), nil
}

func (r *KVRepo) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("kv put: %w", err)
	}
	return nil
}

func (r *KVRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv delete: %w", err)
	}
	return nil
}
