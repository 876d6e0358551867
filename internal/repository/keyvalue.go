package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/therapyassist/dashboard-go/internal/database"
)

const keyValueSchema = `
CREATE TABLE IF NOT EXISTS client_state (
	state_key   TEXT PRIMARY KEY,
	state_value TEXT NOT NULL,
	updated_at  BIGINT NOT NULL
)`

// KeyValueRepository persists small string values for the local client,
// the way a browser keeps values in localStorage.
type KeyValueRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	// SetMany writes all pairs in a single transaction.
	SetMany(ctx context.Context, pairs map[string]string) error
	DeleteMany(ctx context.Context, keys ...string) error
}

type keyValueEntry struct {
	Key       string `db:"state_key"`
	Value     string `db:"state_value"`
	UpdatedAt int64  `db:"updated_at"`
}

type keyValueRepo struct {
	db *database.DB
}

// NewKeyValueRepository creates the backing table when missing.
func NewKeyValueRepository(ctx context.Context, db *database.DB) (KeyValueRepository, error) {
	if _, err := db.ExecContext(ctx, keyValueSchema); err != nil {
		return nil, fmt.Errorf("create client_state table: %w", err)
	}
	return &keyValueRepo{db: db}, nil
}

func (r *keyValueRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var entry keyValueEntry
	err := r.db.GetContext(ctx, &entry, r.db.Rebind(`
		SELECT state_key, state_value, updated_at FROM client_state WHERE state_key = ?
	`), key)
	found, err := HandleNotFound(&entry, err)
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	if found == nil {
		return "", false, nil
	}
	return found.Value, true, nil
}

func (r *keyValueRepo) SetMany(ctx context.Context, pairs map[string]string) error {
	now := time.Now().Unix()
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`
			INSERT INTO client_state (state_key, state_value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (state_key) DO UPDATE
			SET state_value = excluded.state_value, updated_at = excluded.updated_at
		`)
		for key, value := range pairs {
			if _, err := tx.ExecContext(ctx, query, key, value, now); err != nil {
				return fmt.Errorf("set %s: %w", key, err)
			}
		}
		return nil
	})
}

func (r *keyValueRepo) DeleteMany(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM client_state WHERE state_key IN (?)`, keys)
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("delete keys: %w", err)
	}
	return nil
}
