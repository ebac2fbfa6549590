// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/slug"
)

// maxCategoryDepth bounds the ancestor walk used for cycle detection.
const maxCategoryDepth = 64

// CategoryService manages categories. Every mutation is admin-only.
type CategoryService struct {
	categories CategoryRepository
	posts      PostRepository
	populator  *populator
}

// NewCategoryService creates a CategoryService.
func NewCategoryService(categories CategoryRepository, posts PostRepository, users UserRepository) *CategoryService {
	return &CategoryService{
		categories: categories,
		posts:      posts,
		populator:  &populator{users: users, categories: categories},
	}
}

// List returns active categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	cats, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if cats == nil {
		cats = []models.Category{}
	}
	for i := range cats {
		withURL(&cats[i])
	}
	return cats, nil
}

// Get resolves an active category by id or slug and returns it together
// with its most recent published posts.
func (s *CategoryService) Get(ctx context.Context, token string) (*models.Category, []models.Post, error) {
	cat, err := Resolve(ctx, token, s.activeByID, s.activeBySlug)
	if err != nil {
		return nil, nil, categoryLookupError(err)
	}

	posts, _, err := s.posts.ListPublished(ctx, models.PostFilter{CategoryID: &cat.ID, Limit: recentPostsLimit})
	if err != nil {
		return nil, nil, fmt.Errorf("list category posts: %w", err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	if err := s.populator.posts(ctx, posts); err != nil {
		return nil, nil, err
	}
	return withURL(cat), posts, nil
}

// Create stores a new category. Names are unique; the slug is derived from
// the name.
func (s *CategoryService) Create(ctx context.Context, p *models.Principal, d models.CategoryDraft) (*models.Category, error) {
	if err := s.authorize(p, "create"); err != nil {
		return nil, err
	}
	if err := validateStruct(d); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(d.Name)
	catSlug := slug.Generate(name)
	if catSlug == "" {
		return nil, fieldError("name", "Category name must contain letters or digits")
	}

	image := strings.TrimSpace(d.Image)
	if image == "" {
		image = models.DefaultCategoryImage
	}

	cat := &models.Category{
		Name:        name,
		Slug:        catSlug,
		Description: d.Description,
		Image:       image,
		IsActive:    true,
	}

	if ref := strings.TrimSpace(d.ParentCategory); ref != "" {
		parent, err := s.parent(ctx, uuid.Nil, ref)
		if err != nil {
			return nil, err
		}
		cat.ParentID = parent
	}

	created, err := s.categories.Create(ctx, cat)
	if errors.Is(err, models.ErrDuplicate) {
		return nil, newError(ErrConflict, "Category already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return withURL(created), nil
}

// Update applies the fields present in patch. A name change re-derives the
// slug; an empty parentCategory clears the parent link.
func (s *CategoryService) Update(ctx context.Context, p *models.Principal, id uuid.UUID, patch models.CategoryPatch) (*models.Category, error) {
	if err := s.authorize(p, "update"); err != nil {
		return nil, err
	}

	current, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if current == nil {
		return nil, newError(ErrNotFound, "Category not found")
	}

	if err := validateStruct(patch); err != nil {
		return nil, err
	}

	var ch models.CategoryChanges
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fieldError("name", "Name is required")
		}
		catSlug := slug.Generate(name)
		if catSlug == "" {
			return nil, fieldError("name", "Category name must contain letters or digits")
		}
		ch.Name = &name
		ch.Slug = &catSlug
	}
	if patch.Description != nil {
		ch.Description = patch.Description
	}
	if patch.Image != nil {
		image := strings.TrimSpace(*patch.Image)
		ch.Image = &image
	}
	if patch.IsActive != nil {
		ch.IsActive = patch.IsActive
	}
	if patch.ParentCategory != nil {
		var parent *uuid.UUID
		if ref := strings.TrimSpace(*patch.ParentCategory); ref != "" {
			parent, err = s.parent(ctx, id, ref)
			if err != nil {
				return nil, err
			}
		}
		ch.ParentID = &parent
	}

	updated, err := s.categories.Update(ctx, id, ch)
	switch {
	case errors.Is(err, models.ErrDuplicate):
		return nil, newError(ErrConflict, "Category already exists")
	case errors.Is(err, models.ErrNotFound):
		return nil, newError(ErrNotFound, "Category not found")
	case err != nil:
		return nil, fmt.Errorf("update category: %w", err)
	}
	return withURL(updated), nil
}

// Delete removes a category that no post references. Child categories
// lose their parent link.
func (s *CategoryService) Delete(ctx context.Context, p *models.Principal, id uuid.UUID) error {
	if err := s.authorize(p, "delete"); err != nil {
		return err
	}

	cat, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find category: %w", err)
	}
	if cat == nil {
		return newError(ErrNotFound, "Category not found")
	}

	if err := s.ensureUnreferenced(ctx, id); err != nil {
		return err
	}

	err = s.categories.Delete(ctx, id)
	switch {
	case errors.Is(err, models.ErrReferenced):
		// A post was attached after the count; report the fresh count.
		if cerr := s.ensureUnreferenced(ctx, id); cerr != nil {
			return cerr
		}
		return newError(ErrConflict, "Cannot delete category while posts reference it")
	case errors.Is(err, models.ErrNotFound):
		return newError(ErrNotFound, "Category not found")
	case err != nil:
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *CategoryService) ensureUnreferenced(ctx context.Context, id uuid.UUID) error {
	count, err := s.posts.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count category posts: %w", err)
	}
	if count > 0 {
		e := newError(ErrConflict, "Cannot delete category with %d posts. Reassign posts first.", count)
		e.Meta = map[string]any{"postCount": count}
		return e
	}
	return nil
}

func (s *CategoryService) authorize(p *models.Principal, action string) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if !CanMutateCategory(p) {
		return newError(ErrForbidden, "Not authorized to %s categories", action)
	}
	return nil
}

// parent validates a parent reference for category id (uuid.Nil for a new
// category). The parent must exist and must not have id among its ancestors.
func (s *CategoryService) parent(ctx context.Context, id uuid.UUID, ref string) (*uuid.UUID, error) {
	parentID, err := uuid.Parse(ref)
	if err != nil {
		return nil, fieldError("parentCategory", "Parent category must be a category id")
	}
	if parentID == id {
		return nil, fieldError("parentCategory", "A category cannot be its own parent")
	}

	next := &parentID
	for depth := 0; next != nil; depth++ {
		if depth >= maxCategoryDepth {
			return nil, fieldError("parentCategory", "Category tree is too deep")
		}
		ancestor, err := s.categories.FindByID(ctx, *next)
		if err != nil {
			return nil, fmt.Errorf("find parent category: %w", err)
		}
		if ancestor == nil {
			if depth == 0 {
				return nil, fieldError("parentCategory", "Parent category not found")
			}
			break
		}
		if id != uuid.Nil && ancestor.ID == id {
			return nil, fieldError("parentCategory", "Parent category would create a cycle")
		}
		next = ancestor.ParentID
	}
	return &parentID, nil
}

func (s *CategoryService) activeByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return activeOnly(s.categories.FindByID(ctx, id))
}

func (s *CategoryService) activeBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return activeOnly(s.categories.FindBySlug(ctx, slug))
}

func activeOnly(c *models.Category, err error) (*models.Category, error) {
	if err != nil || c == nil || !c.IsActive {
		return nil, err
	}
	return c, nil
}

func withURL(c *models.Category) *models.Category {
	c.URL = models.CategoryURL(c.Slug)
	return c
}

func categoryLookupError(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return newError(ErrNotFound, "Category not found")
	}
	return fmt.Errorf("category store: %w", err)
}
