// Package backend opens the repository set selected by STORE_DRIVER so the
// server and the operator CLI share one wiring path.
package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"inkwell/internal/blog"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/memstore"
	"inkwell/internal/models"
	"inkwell/internal/mongostore"
	"inkwell/internal/store"
)

// ErrNotPostgres is returned by operations that only exist for the SQL
// backend, such as schema migrations.
var ErrNotPostgres = errors.New("operation requires the postgres store driver")

// UserStore is the account repository including operator lookups.
type UserStore interface {
	blog.UserRepository
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Backend is an open set of repositories.
type Backend struct {
	Driver     string
	Users      UserStore
	Categories blog.CategoryRepository
	Posts      blog.PostRepository

	// DB is the SQL pool; nil unless Driver is postgres.
	DB *sql.DB

	close func(context.Context) error
}

// Open connects to the configured store. Postgres schemas are migrated by
// the caller; Mongo indexes are ensured on connect.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.Connect(ctx, cfg.DSN())
		if err != nil {
			return nil, err
		}
		return &Backend{
			Driver:     cfg.StoreDriver,
			Users:      store.NewUserStore(db),
			Categories: store.NewCategoryStore(db),
			Posts:      store.NewPostStore(db),
			DB:         db,
			close:      func(context.Context) error { return db.Close() },
		}, nil

	case config.DriverMongo:
		ms, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Driver:     cfg.StoreDriver,
			Users:      ms.Users(),
			Categories: ms.Categories(),
			Posts:      ms.Posts(),
			close:      ms.Close,
		}, nil

	case config.DriverMemory:
		slog.Warn("using in-memory store, data is lost on exit")
		return NewMemory(memstore.New()), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// NewMemory wraps an in-memory store.
func NewMemory(ms *memstore.Store) *Backend {
	return &Backend{
		Driver:     config.DriverMemory,
		Users:      ms.Users(),
		Categories: ms.Categories(),
		Posts:      ms.Posts(),
		close:      func(context.Context) error { return nil },
	}
}

// Migrate applies pending SQL migrations. The document and memory stores
// have no schema, so it is a no-op for them.
func (b *Backend) Migrate(ctx context.Context) error {
	if b.DB == nil {
		return nil
	}
	return database.Migrate(ctx, b.DB)
}

// Seed loads development data: an admin, a regular user and the Tech
// category. It does nothing when the seed admin already exists.
func (b *Backend) Seed(ctx context.Context) error {
	if b.DB != nil {
		return database.Seed(ctx, b.DB)
	}

	existing, err := b.Users.FindByUsername(ctx, database.SeedAdminUsername)
	if err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if existing != nil {
		slog.Info("store already seeded, skipping")
		return nil
	}

	users := []*models.User{
		{Username: database.SeedAdminUsername, Email: "admin@inkwell.local", Name: "Admin", Role: models.RoleAdmin, IsActive: true},
		{Username: database.SeedUserUsername, Email: "writer@inkwell.local", Name: "Writer", Role: models.RoleUser, IsActive: true},
	}
	for _, u := range users {
		if _, err := b.Users.Create(ctx, u); err != nil {
			return fmt.Errorf("seed insert user %s: %w", u.Username, err)
		}
	}

	_, err = b.Categories.Create(ctx, &models.Category{
		Name:        database.SeedCategoryName,
		Slug:        "tech",
		Description: "Software, hardware and everything in between",
		Image:       models.DefaultCategoryImage,
		IsActive:    true,
	})
	if err != nil && !errors.Is(err, models.ErrDuplicate) {
		return fmt.Errorf("seed insert category: %w", err)
	}

	slog.Info("store seeded",
		"driver", b.Driver,
		"admin", database.SeedAdminUsername,
		"user", database.SeedUserUsername,
		"category", database.SeedCategoryName,
	)
	return nil
}

// Close releases the underlying connections.
func (b *Backend) Close(ctx context.Context) error {
	return b.close(ctx)
}
