package storage

import (
	"context"
	"fmt"
	"strings"
)

// GetOrCreateUser finds or creates a user by Tailscale login name and
// returns its ID. last_seen is refreshed on every call and display_name when
// a non-empty one is given. Logins compare case-insensitively.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return 0, fmt.Errorf("empty login")
	}
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user %s: %w", login, err)
	}
	return id, nil
}
