package memstore_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/blog"
	"inkwell/internal/memstore"
	"inkwell/internal/models"
)

var (
	_ blog.UserRepository     = (*memstore.UserStore)(nil)
	_ blog.CategoryRepository = (*memstore.CategoryStore)(nil)
	_ blog.PostRepository     = (*memstore.PostStore)(nil)
)

func seedPost(t *testing.T, s *memstore.Store) *models.Post {
	t.Helper()
	ctx := context.Background()

	cat, err := s.Categories().Create(ctx, &models.Category{Name: "Tech", Slug: "tech", IsActive: true})
	require.NoError(t, err)

	post, err := s.Posts().Create(ctx, &models.Post{
		Title:      "Hello World",
		Slug:       "hello-world",
		Content:    "short text",
		CategoryID: cat.ID,
		AuthorID:   uuid.New(),
	})
	require.NoError(t, err)
	return post
}

func TestPostStoreSlugUnique(t *testing.T) {
	s := memstore.New()
	post := seedPost(t, s)

	_, err := s.Posts().Create(context.Background(), &models.Post{
		Title: "Hello World", Slug: post.Slug, Content: "x", CategoryID: post.CategoryID,
	})
	assert.ErrorIs(t, err, models.ErrDuplicate)
}

func TestPostStoreConcurrentViewCount(t *testing.T) {
	s := memstore.New()
	post := seedPost(t, s)

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Posts().IncrementViewCount(context.Background(), post.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Posts().FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, n, got.ViewCount)
}

func TestPostStoreConcurrentAppendComment(t *testing.T) {
	s := memstore.New()
	post := seedPost(t, s)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Posts().AppendComment(context.Background(), post.ID, &models.Comment{
				UserID:  uuid.New(),
				Content: fmt.Sprintf("comment %d", i),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.Posts().FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, n)

	seen := make(map[string]bool, n)
	for _, c := range got.Comments {
		seen[c.Content] = true
	}
	for i := 0; i < n; i++ {
		assert.True(t, seen[fmt.Sprintf("comment %d", i)], "comment %d lost", i)
	}
}

func TestPostStoreAppendCommentMissingPost(t *testing.T) {
	s := memstore.New()
	_, err := s.Posts().AppendComment(context.Background(), uuid.New(), &models.Comment{Content: "hi"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCategoryStoreDeleteReferenced(t *testing.T) {
	s := memstore.New()
	post := seedPost(t, s)

	err := s.Categories().Delete(context.Background(), post.CategoryID)
	assert.ErrorIs(t, err, models.ErrReferenced)

	cat, err := s.Categories().FindByID(context.Background(), post.CategoryID)
	require.NoError(t, err)
	assert.NotNil(t, cat)
}

func TestCategoryStoreDeleteDetachesChildren(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	parent, err := s.Categories().Create(ctx, &models.Category{Name: "Parent", Slug: "parent", IsActive: true})
	require.NoError(t, err)
	child, err := s.Categories().Create(ctx, &models.Category{Name: "Child", Slug: "child", IsActive: true, ParentID: &parent.ID})
	require.NoError(t, err)

	require.NoError(t, s.Categories().Delete(ctx, parent.ID))

	got, err := s.Categories().FindByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)
}

func TestCategoryStoreUniqueNameAndSlug(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	_, err := s.Categories().Create(ctx, &models.Category{Name: "Tech", Slug: "tech"})
	require.NoError(t, err)

	_, err = s.Categories().Create(ctx, &models.Category{Name: "Tech", Slug: "tech-2"})
	assert.ErrorIs(t, err, models.ErrDuplicate)

	_, err = s.Categories().Create(ctx, &models.Category{Name: "TECH!", Slug: "tech"})
	assert.ErrorIs(t, err, models.ErrDuplicate)
}

func TestPostStoreUpdateLeavesCountersAlone(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	post := seedPost(t, s)

	_, err := s.Posts().IncrementViewCount(ctx, post.ID)
	require.NoError(t, err)
	_, err = s.Posts().AppendComment(ctx, post.ID, &models.Comment{UserID: uuid.New(), Content: "first"})
	require.NoError(t, err)

	title := "Renamed"
	updated, err := s.Posts().Update(ctx, post.ID, models.PostChanges{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "hello-world", updated.Slug)
	assert.EqualValues(t, 1, updated.ViewCount)
	assert.Len(t, updated.Comments, 1)
}
