// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"inkwell/internal/metrics"
	"inkwell/internal/models"
	"inkwell/internal/slug"
)

const (
	// maxSlugAttempts bounds the numeric suffixes tried for a colliding title.
	maxSlugAttempts = 50

	// fallbackPostSlug is used when a title has no sluggable characters.
	fallbackPostSlug = "post"

	maxCommentLen = 1000
)

// PostService implements post creation, lookup, listing, search, mutation
// and commenting on top of a PostRepository.
type PostService struct {
	posts       PostRepository
	categories  CategoryRepository
	populator   *populator
	searchLimit int
}

// NewPostService creates a PostService. searchLimit caps search results;
// zero selects DefaultSearchLimit.
func NewPostService(posts PostRepository, categories CategoryRepository, users UserRepository, searchLimit int) *PostService {
	if searchLimit <= 0 {
		searchLimit = DefaultSearchLimit
	}
	return &PostService{
		posts:       posts,
		categories:  categories,
		populator:   &populator{users: users, categories: categories},
		searchLimit: searchLimit,
	}
}

// Create validates the draft and stores a new post authored by p. The slug
// is derived from the title; on collision the next numeric suffix is tried
// until the store's unique index accepts it.
func (s *PostService) Create(ctx context.Context, p *models.Principal, d models.PostDraft) (*models.Post, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if err := validateStruct(d); err != nil {
		return nil, err
	}

	cat, err := s.findCategory(ctx, d.Category)
	if err != nil {
		return nil, err
	}

	excerpt := d.Excerpt
	if strings.TrimSpace(excerpt) == "" {
		excerpt = models.DeriveExcerpt(d.Content)
	}
	featured := strings.TrimSpace(d.FeaturedImage)
	if featured == "" {
		featured = models.DefaultFeaturedImage
	}

	post := &models.Post{
		Title:         strings.TrimSpace(d.Title),
		Content:       d.Content,
		Excerpt:       excerpt,
		FeaturedImage: featured,
		CategoryID:    cat.ID,
		Tags:          models.NormalizeTags(d.Tags),
		IsPublished:   d.IsPublished,
		AuthorID:      p.ID,
	}

	base := slug.Generate(post.Title)
	if base == "" {
		base = fallbackPostSlug
	}

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		post.Slug = slug.WithSuffix(base, attempt)
		created, err := s.posts.Create(ctx, post)
		if errors.Is(err, models.ErrDuplicate) {
			metrics.SlugCollisions.Inc()
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		metrics.PostsCreated.Inc()
		return s.populate(ctx, created)
	}
	return nil, newError(ErrConflict, "Too many posts share the title %q", post.Title)
}

// Get resolves a post by id or slug and counts the read. The returned post
// carries the incremented view count.
func (s *PostService) Get(ctx context.Context, token string) (*models.Post, error) {
	post, err := Resolve(ctx, token, s.posts.FindByID, s.posts.FindBySlug)
	if err != nil {
		return nil, postLookupError(err)
	}

	count, err := s.IncrementViewCount(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	post.ViewCount = count
	return s.populate(ctx, post)
}

// IncrementViewCount atomically adds one view and returns the new count.
func (s *PostService) IncrementViewCount(ctx context.Context, id uuid.UUID) (int64, error) {
	count, err := s.posts.IncrementViewCount(ctx, id)
	if err != nil {
		return 0, postLookupError(err)
	}
	metrics.PostViews.Inc()
	return count, nil
}

// List returns a page of published posts, newest first, optionally limited
// to one category given by id or slug.
func (s *PostService) List(ctx context.Context, req PageRequest, category string) (*PostPage, error) {
	req = NewPageRequest(req.Page, req.Limit)
	filter := models.PostFilter{Offset: req.Offset(), Limit: req.Limit}

	if strings.TrimSpace(category) != "" {
		cat, err := Resolve(ctx, category, s.categories.FindByID, s.categories.FindBySlug)
		if errors.Is(err, models.ErrNotFound) {
			return nil, newError(ErrNotFound, "Category not found")
		}
		if err != nil {
			return nil, fmt.Errorf("resolve category filter: %w", err)
		}
		filter.CategoryID = &cat.ID
	}

	posts, total, err := s.posts.ListPublished(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if err := s.populator.posts(ctx, posts); err != nil {
		return nil, err
	}

	return &PostPage{
		Posts:      posts,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages(total, req.Limit),
	}, nil
}

// Search returns published posts whose title or content contains query, or
// that carry a tag containing it, ignoring case. Results are newest first
// and capped at the configured search limit.
func (s *PostService) Search(ctx context.Context, query string) ([]models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, newError(ErrValidation, "Search query is required")
	}

	posts, err := s.posts.SearchPublished(ctx, query, s.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	if err := s.populator.posts(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Update applies the fields present in patch. Only the author or an admin
// may update a post. Slug, author, view count and comments never change.
func (s *PostService) Update(ctx context.Context, p *models.Principal, id uuid.UUID, patch models.PostPatch) (*models.Post, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}

	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	if post == nil {
		return nil, newError(ErrNotFound, "Post not found")
	}
	if !CanMutatePost(p, post) {
		return nil, newError(ErrForbidden, "Not authorized to update this post")
	}

	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	changes, err := s.postChanges(ctx, post, patch)
	if err != nil {
		return nil, err
	}
	if changes.Empty() {
		return s.populate(ctx, post)
	}

	updated, err := s.posts.Update(ctx, id, changes)
	if err != nil {
		return nil, postLookupError(err)
	}
	return s.populate(ctx, updated)
}

// postChanges turns a patch into column updates, collecting every invalid field.
func (s *PostService) postChanges(ctx context.Context, post *models.Post, patch models.PostPatch) (models.PostChanges, error) {
	var (
		ch   models.PostChanges
		errs FieldErrors
	)

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			errs = append(errs, FieldError{Param: "title", Msg: "Title cannot be empty"})
		} else {
			ch.Title = &title
		}
	}

	content := post.Content
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			errs = append(errs, FieldError{Param: "content", Msg: "Content cannot be empty"})
		} else {
			content = *patch.Content
			ch.Content = &content
		}
	}

	if patch.Excerpt != nil {
		excerpt := *patch.Excerpt
		if strings.TrimSpace(excerpt) == "" {
			excerpt = models.DeriveExcerpt(content)
		}
		ch.Excerpt = &excerpt
	}

	if patch.FeaturedImage != nil {
		image := strings.TrimSpace(*patch.FeaturedImage)
		ch.FeaturedImage = &image
	}

	if patch.Category != nil {
		if strings.TrimSpace(*patch.Category) == "" {
			errs = append(errs, FieldError{Param: "category", Msg: "Category cannot be empty"})
		} else {
			cat, err := s.findCategory(ctx, *patch.Category)
			var fe FieldErrors
			switch {
			case errors.As(err, &fe):
				errs = append(errs, fe...)
			case err != nil:
				return ch, err
			default:
				ch.CategoryID = &cat.ID
			}
		}
	}

	if patch.Tags != nil {
		tags := models.NormalizeTags(*patch.Tags)
		ch.Tags = &tags
	}

	if patch.IsPublished != nil {
		published := *patch.IsPublished
		ch.IsPublished = &published
	}

	if len(errs) > 0 {
		return ch, errs
	}
	return ch, nil
}

// Delete removes the post together with its comments. Only the author or
// an admin may delete a post.
func (s *PostService) Delete(ctx context.Context, p *models.Principal, id uuid.UUID) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}

	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find post: %w", err)
	}
	if post == nil {
		return newError(ErrNotFound, "Post not found")
	}
	if !CanMutatePost(p, post) {
		return newError(ErrForbidden, "Not authorized to delete this post")
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return postLookupError(err)
	}
	return nil
}

// AddComment appends a comment by p to the post and returns the post with
// its full comment sequence. Appending does not count as a view.
func (s *PostService) AddComment(ctx context.Context, p *models.Principal, id uuid.UUID, content string) (*models.Post, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fieldError("content", "Comment content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return nil, fieldError("content", fmt.Sprintf("Comment cannot be more than %d characters", maxCommentLen))
	}

	if _, err := s.posts.AppendComment(ctx, id, &models.Comment{UserID: p.ID, Content: content}); err != nil {
		return nil, postLookupError(err)
	}
	metrics.CommentsAdded.Inc()

	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	if post == nil {
		return nil, newError(ErrNotFound, "Post not found")
	}
	return s.populate(ctx, post)
}

// findCategory resolves a category reference given in a draft or patch.
func (s *PostService) findCategory(ctx context.Context, token string) (*models.Category, error) {
	cat, err := Resolve(ctx, token, s.categories.FindByID, s.categories.FindBySlug)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fieldError("category", "Category not found")
	}
	if err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	return cat, nil
}

func (s *PostService) populate(ctx context.Context, post *models.Post) (*models.Post, error) {
	posts := []models.Post{*post}
	if err := s.populator.posts(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// postLookupError maps a storage miss to a NotFound error and wraps anything else.
func postLookupError(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return newError(ErrNotFound, "Post not found")
	}
	return fmt.Errorf("post store: %w", err)
}
