package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed usernames. The seeded accounts have no credentials of their own;
// tokens for them are issued with `inkwellctl token`.
const (
	SeedAdminUsername = "admin"
	SeedUserUsername  = "writer"
	SeedCategoryName  = "Tech"
)

// Seed populates the database with initial development data: an admin, a
// regular user and one category. It does nothing when any user exists.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	users := []struct {
		username, email, name, role string
	}{
		{SeedAdminUsername, "admin@inkwell.local", "Admin", "admin"},
		{SeedUserUsername, "writer@inkwell.local", "Writer", "user"},
	}
	for _, u := range users {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (username, email, name, role)
			VALUES ($1, $2, $3, $4)
		`, u.username, u.email, u.name, u.role)
		if err != nil {
			return fmt.Errorf("seed insert user %s: %w", u.username, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, SeedCategoryName, "tech", "Software, hardware and everything in between")
	if err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded",
		"admin", SeedAdminUsername,
		"user", SeedUserUsername,
		"category", SeedCategoryName,
	)
	return nil
}
