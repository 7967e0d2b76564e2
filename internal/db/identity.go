package db

import (
	"context"
	"fmt"
	"time"
)

// IdentityMapping links a team member's canonical email to their GitHub
// login so cross-provider rows can be merged into one person. Unique by
// email, maintained by an operator through the dashboard.
type IdentityMapping struct {
	Email          string    `json:"email"`
	GitHubUsername string    `json:"githubUsername"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ListIdentityMappings returns all mappings ordered by email.
func (db *DB) ListIdentityMappings(ctx context.Context) ([]IdentityMapping, error) {
	query := `
		SELECT email, github_username, created_at, updated_at
		FROM identity_mappings
		ORDER BY email`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list identity mappings: %w", err)
	}
	defer rows.Close()

	var result []IdentityMapping
	for rows.Next() {
		var m IdentityMapping
		if err := rows.Scan(&m.Email, &m.GitHubUsername, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan identity mapping: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate identity mappings: %w", err)
	}
	return result, nil
}

// UpsertIdentityMapping creates or updates the mapping for email.
func (db *DB) UpsertIdentityMapping(ctx context.Context, email, githubUsername string) (*IdentityMapping, error) {
	query := `
		INSERT INTO identity_mappings (email, github_username)
		VALUES ($1, $2)
		ON CONFLICT (email)
		DO UPDATE SET github_username = EXCLUDED.github_username, updated_at = NOW()
		RETURNING email, github_username, created_at, updated_at`

	var m IdentityMapping
	err := db.conn.QueryRowContext(ctx, query, email, githubUsername).Scan(
		&m.Email,
		&m.GitHubUsername,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert identity mapping: %w", err)
	}
	return &m, nil
}

// DeleteIdentityMapping removes the mapping for email.
// Returns ErrMappingNotFound if no mapping exists.
func (db *DB) DeleteIdentityMapping(ctx context.Context, email string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM identity_mappings WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("failed to delete identity mapping: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrMappingNotFound
	}
	return nil
}
