package blog

import (
	"context"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// Finders return (nil, nil) when nothing matches. Mutations return
// models.ErrNotFound for a missing target, models.ErrDuplicate for a unique
// key violation and models.ErrReferenced when a delete is blocked.

// UserRepository reads the accounts referenced by posts and comments.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	Create(ctx context.Context, u *models.User) (*models.User, error)
}

// CategoryRepository persists categories. Name and slug are unique.
type CategoryRepository interface {
	ListActive(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, ch models.CategoryChanges) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostRepository persists posts and their comment sequences. Slug is unique;
// view counting and comment appends are single atomic store operations.
type PostRepository interface {
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	ListPublished(ctx context.Context, f models.PostFilter) ([]models.Post, int, error)
	SearchPublished(ctx context.Context, query string, limit int) ([]models.Post, error)
	Update(ctx context.Context, id uuid.UUID, ch models.PostChanges) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AppendComment(ctx context.Context, postID uuid.UUID, c *models.Comment) (*models.Comment, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) (int64, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
}
