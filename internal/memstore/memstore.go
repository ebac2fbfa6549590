// Package memstore keeps users, categories and posts in process memory.
// It backs the "memory" storage driver used for local development and for
// tests. A single mutex serializes every mutation, which gives the same
// atomicity guarantees the database drivers get from their stores.
package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// Store holds all collections. Use Users, Categories and Posts to obtain
// the repository views.
type Store struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]models.User
	categories map[uuid.UUID]models.Category
	posts      map[uuid.UUID]models.Post
	now        func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock returns an empty Store that timestamps records with now.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		users:      make(map[uuid.UUID]models.User),
		categories: make(map[uuid.UUID]models.Category),
		posts:      make(map[uuid.UUID]models.Post),
		now:        now,
	}
}

// Users returns the user repository view.
func (s *Store) Users() *UserStore { return &UserStore{s: s} }

// Categories returns the category repository view.
func (s *Store) Categories() *CategoryStore { return &CategoryStore{s: s} }

// Posts returns the post repository view.
func (s *Store) Posts() *PostStore { return &PostStore{s: s} }

// UserStore is the in-memory user repository.
type UserStore struct{ s *Store }

// FindByID returns the user or nil.
func (r *UserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// FindByUsername returns the user with username, ignoring case, or nil.
func (r *UserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, nil
}

// FindByIDs returns the users that exist among ids.
func (r *UserStore) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// Create stores a user. Username and email are unique.
func (r *UserStore) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Username, u.Username) || strings.EqualFold(existing.Email, u.Email) {
			return nil, models.ErrDuplicate
		}
	}
	out := *u
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	now := r.s.now()
	out.CreatedAt, out.UpdatedAt = now, now
	r.s.users[out.ID] = out
	return &out, nil
}

// CategoryStore is the in-memory category repository.
type CategoryStore struct{ s *Store }

// ListActive returns active categories ordered by name.
func (r *CategoryStore) ListActive(_ context.Context) ([]models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		if c.IsActive {
			out = append(out, cloneCategory(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// FindByID returns the category or nil.
func (r *CategoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	c = cloneCategory(c)
	return &c, nil
}

// FindBySlug returns the category with slug or nil.
func (r *CategoryStore) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.categories {
		if c.Slug == slug {
			c = cloneCategory(c)
			return &c, nil
		}
	}
	return nil, nil
}

// FindByIDs returns the categories that exist among ids.
func (r *CategoryStore) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Category, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.s.categories[id]; ok {
			out = append(out, cloneCategory(c))
		}
	}
	return out, nil
}

// Create stores a category. Name and slug are unique.
func (r *CategoryStore) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.categoryTaken(uuid.Nil, c.Name, c.Slug) {
		return nil, models.ErrDuplicate
	}
	out := cloneCategory(*c)
	out.ID = uuid.New()
	now := r.s.now()
	out.CreatedAt, out.UpdatedAt = now, now
	r.s.categories[out.ID] = out
	out = cloneCategory(out)
	return &out, nil
}

// Update applies the non-nil changes.
func (r *CategoryStore) Update(_ context.Context, id uuid.UUID, ch models.CategoryChanges) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	name, slug := c.Name, c.Slug
	if ch.Name != nil {
		name = *ch.Name
	}
	if ch.Slug != nil {
		slug = *ch.Slug
	}
	if r.s.categoryTaken(id, name, slug) {
		return nil, models.ErrDuplicate
	}

	c.Name, c.Slug = name, slug
	if ch.Description != nil {
		c.Description = *ch.Description
	}
	if ch.Image != nil {
		c.Image = *ch.Image
	}
	if ch.IsActive != nil {
		c.IsActive = *ch.IsActive
	}
	if ch.ParentID != nil {
		c.ParentID = cloneID(*ch.ParentID)
	}
	c.UpdatedAt = r.s.now()
	r.s.categories[id] = c
	c = cloneCategory(c)
	return &c, nil
}

// Delete removes an unreferenced category and detaches its children.
func (r *CategoryStore) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return models.ErrNotFound
	}
	for _, p := range r.s.posts {
		if p.CategoryID == id {
			return models.ErrReferenced
		}
	}
	delete(r.s.categories, id)
	for cid, c := range r.s.categories {
		if c.ParentID != nil && *c.ParentID == id {
			c.ParentID = nil
			r.s.categories[cid] = c
		}
	}
	return nil
}

// categoryTaken reports whether another category already uses name or slug.
// Callers must hold the lock.
func (s *Store) categoryTaken(self uuid.UUID, name, slug string) bool {
	for id, c := range s.categories {
		if id == self {
			continue
		}
		if c.Name == name || c.Slug == slug {
			return true
		}
	}
	return false
}

// PostStore is the in-memory post repository.
type PostStore struct{ s *Store }

// Create stores a post with a unique slug.
func (r *PostStore) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.posts {
		if existing.Slug == p.Slug {
			return nil, models.ErrDuplicate
		}
	}
	if _, ok := r.s.categories[p.CategoryID]; !ok {
		return nil, models.ErrReferenced
	}

	out := clonePost(*p)
	out.ID = uuid.New()
	out.ViewCount = 0
	out.Comments = []models.Comment{}
	now := r.s.now()
	out.CreatedAt, out.UpdatedAt = now, now
	r.s.posts[out.ID] = out
	out = clonePost(out)
	return &out, nil
}

// FindByID returns the post with its comments or nil.
func (r *PostStore) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, nil
	}
	p = clonePost(p)
	return &p, nil
}

// FindBySlug returns the post with slug or nil.
func (r *PostStore) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.posts {
		if p.Slug == slug {
			p = clonePost(p)
			return &p, nil
		}
	}
	return nil, nil
}

// ListPublished returns a page of published posts, newest first, and the
// total number of matches.
func (r *PostStore) ListPublished(_ context.Context, f models.PostFilter) ([]models.Post, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matched := r.s.published(func(p *models.Post) bool {
		return f.CategoryID == nil || p.CategoryID == *f.CategoryID
	})

	total := len(matched)
	start := min(f.Offset, total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	return matched[start:end], total, nil
}

// SearchPublished matches query against title, content and tags ignoring case.
func (r *PostStore) SearchPublished(_ context.Context, query string, limit int) ([]models.Post, error) {
	q := strings.ToLower(query)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matched := r.s.published(func(p *models.Post) bool {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Content), q) {
			return true
		}
		return slices.ContainsFunc(p.Tags, func(t string) bool {
			return strings.Contains(strings.ToLower(t), q)
		})
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// published returns copies of the published posts accepted by keep, newest
// first. Callers must hold the lock.
func (s *Store) published(keep func(*models.Post) bool) []models.Post {
	out := []models.Post{}
	for _, p := range s.posts {
		if p.IsPublished && keep(&p) {
			out = append(out, clonePost(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Update applies the non-nil changes.
func (r *PostStore) Update(_ context.Context, id uuid.UUID, ch models.PostChanges) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if ch.CategoryID != nil {
		if _, ok := r.s.categories[*ch.CategoryID]; !ok {
			return nil, models.ErrReferenced
		}
		p.CategoryID = *ch.CategoryID
	}
	if ch.Title != nil {
		p.Title = *ch.Title
	}
	if ch.Content != nil {
		p.Content = *ch.Content
	}
	if ch.Excerpt != nil {
		p.Excerpt = *ch.Excerpt
	}
	if ch.FeaturedImage != nil {
		p.FeaturedImage = *ch.FeaturedImage
	}
	if ch.Tags != nil {
		p.Tags = slices.Clone(*ch.Tags)
	}
	if ch.IsPublished != nil {
		p.IsPublished = *ch.IsPublished
	}
	p.UpdatedAt = r.s.now()
	r.s.posts[id] = p
	p = clonePost(p)
	return &p, nil
}

// Delete removes the post and its comments.
func (r *PostStore) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.s.posts, id)
	return nil
}

// AppendComment adds c to the end of the post's comment sequence.
func (r *PostStore) AppendComment(_ context.Context, postID uuid.UUID, c *models.Comment) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[postID]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *c
	out.ID = uuid.New()
	out.CreatedAt = r.s.now()
	out.User = nil
	p.Comments = append(slices.Clone(p.Comments), out)
	r.s.posts[postID] = p
	return &out, nil
}

// IncrementViewCount adds one view and returns the new count.
func (r *PostStore) IncrementViewCount(_ context.Context, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return 0, models.ErrNotFound
	}
	p.ViewCount++
	r.s.posts[id] = p
	return p.ViewCount, nil
}

// CountByCategory returns the number of posts, published or not, in the category.
func (r *PostStore) CountByCategory(_ context.Context, categoryID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, p := range r.s.posts {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func clonePost(p models.Post) models.Post {
	p.Tags = slices.Clone(p.Tags)
	if p.Tags == nil {
		p.Tags = models.Tags{}
	}
	p.Comments = slices.Clone(p.Comments)
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	p.Author, p.Category = nil, nil
	return p
}

func cloneCategory(c models.Category) models.Category {
	c.ParentID = cloneID(c.ParentID)
	return c
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
