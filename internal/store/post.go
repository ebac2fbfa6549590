// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// PostStore handles posts and their comment sequences. Comments live in
// post_comments and are ordered by their seq column.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, title, slug, content, excerpt, featured_image, category_id, tags,
	is_published, author_id, view_count, created_at, updated_at`

const commentColumns = `id, post_id, user_id, content, created_at`

// publishedOrder is newest first with a stable tiebreak.
const publishedOrder = `ORDER BY created_at DESC, id DESC`

func scanPost(scanner rowScanner) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.FeaturedImage,
		&p.CategoryID, &p.Tags, &p.IsPublished, &p.AuthorID, &p.ViewCount,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Comments = []models.Comment{}
	return &p, nil
}

// Create inserts a new post. A taken slug yields models.ErrDuplicate and an
// unknown category models.ErrReferenced.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	tags := p.Tags
	if tags == nil {
		tags = models.Tags{}
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, content, excerpt, featured_image, category_id, tags, is_published, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+postColumns,
		p.Title, p.Slug, p.Content, p.Excerpt, p.FeaturedImage, p.CategoryID, tags, p.IsPublished, p.AuthorID,
	)
	created, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", mapConstraint(err))
	}
	return created, nil
}

// FindByID retrieves a post with its comments. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.findOne(ctx, "id", id)
}

// FindBySlug retrieves a post with its comments by slug. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.findOne(ctx, "slug", slug)
}

func (s *PostStore) findOne(ctx context.Context, column string, value any) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE `+column+` = $1`, value)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by %s: %w", column, err)
	}
	posts := []models.Post{*p}
	if err := s.attachComments(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// ListPublished returns one page of published posts, newest first, and the
// total number of published posts matching the filter. A zero limit
// returns every match.
func (s *PostStore) ListPublished(ctx context.Context, f models.PostFilter) ([]models.Post, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM posts
		WHERE is_published AND ($1::uuid IS NULL OR category_id = $1)
	`, f.CategoryID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count published posts: %w", err)
	}

	posts, err := s.query(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE is_published AND ($1::uuid IS NULL OR category_id = $1)
		`+publishedOrder+`
		LIMIT NULLIF($2::int, 0) OFFSET $3
	`, f.CategoryID, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list published posts: %w", err)
	}
	return posts, total, nil
}

// SearchPublished returns published posts whose title or content contains
// query, or that have a tag containing it, ignoring case.
func (s *PostStore) SearchPublished(ctx context.Context, query string, limit int) ([]models.Post, error) {
	posts, err := s.query(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE is_published AND (
			title ILIKE $1 OR content ILIKE $1
			OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS t(tag) WHERE t.tag ILIKE $1)
		)
		`+publishedOrder+`
		LIMIT NULLIF($2::int, 0)
	`, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return posts, nil
}

// CountByCategory returns how many posts, published or not, reference the category.
func (s *PostStore) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE category_id = $1`, categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count posts by category: %w", err)
	}
	return n, nil
}

// Update writes the non-nil fields of ch in a single statement.
func (s *PostStore) Update(ctx context.Context, id uuid.UUID, ch models.PostChanges) (*models.Post, error) {
	var b updateBuilder
	if ch.Title != nil {
		b.set("title", *ch.Title)
	}
	if ch.Content != nil {
		b.set("content", *ch.Content)
	}
	if ch.Excerpt != nil {
		b.set("excerpt", *ch.Excerpt)
	}
	if ch.FeaturedImage != nil {
		b.set("featured_image", *ch.FeaturedImage)
	}
	if ch.CategoryID != nil {
		b.set("category_id", *ch.CategoryID)
	}
	if ch.Tags != nil {
		b.set("tags", *ch.Tags)
	}
	if ch.IsPublished != nil {
		b.set("is_published", *ch.IsPublished)
	}

	query, args := b.build("posts", id, postColumns)
	p, err := scanPost(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", mapConstraint(err))
	}

	posts := []models.Post{*p}
	if err := s.attachComments(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// Delete removes a post; its comments go with it (ON DELETE CASCADE).
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AppendComment inserts c at the end of the post's comment sequence. The
// insert is a single row, so concurrent appends never lose each other.
func (s *PostStore) AppendComment(ctx context.Context, postID uuid.UUID, c *models.Comment) (*models.Comment, error) {
	out := *c
	out.User = nil
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO post_comments (post_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, postID, c.UserID, c.Content).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == codeForeignKeyViolation && pgErr.ConstraintName == "post_comments_post_id_fkey" {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("append comment: %w", mapConstraint(err))
	}
	return &out, nil
}

// IncrementViewCount adds one view in place and returns the new count.
func (s *PostStore) IncrementViewCount(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE posts SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count
	`, id).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment view count: %w", err)
	}
	return count, nil
}

// query runs a post SELECT and attaches comments to every row.
func (s *PostStore) query(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachComments(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachComments loads the comment sequences of posts with one query.
func (s *PostStore) attachComments(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(posts))
	index := make(map[uuid.UUID]int, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		index[posts[i].ID] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commentColumns+` FROM post_comments
		WHERE post_id = ANY($1::uuid[])
		ORDER BY post_id, seq
	`, uuidArray(ids))
	if err != nil {
		return fmt.Errorf("load comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c      models.Comment
			postID uuid.UUID
		)
		if err := rows.Scan(&c.ID, &postID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return fmt.Errorf("scan comment: %w", err)
		}
		if i, ok := index[postID]; ok {
			posts[i].Comments = append(posts[i].Comments, c)
		}
	}
	return rows.Err()
}
