package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetConfig returns the value stored under key.
// Returns ErrConfigNotFound if the key has never been set.
func (db *DB) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.QueryRowContext(ctx, `SELECT value FROM app_config WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrConfigNotFound
		}
		return "", fmt.Errorf("failed to get config %q: %w", key, err)
	}
	return value, nil
}

// SetConfig upserts a config value.
func (db *DB) SetConfig(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO app_config (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := db.conn.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set config %q: %w", key, err)
	}
	return nil
}
