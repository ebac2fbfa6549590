package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/models"
)

func TestCategoryStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	c := testCategory(t, db)
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Nil(t, c.ParentID)

	byID, err := s.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, c.Name, byID.Name)

	bySlug, err := s.FindBySlug(ctx, c.Slug)
	require.NoError(t, err)
	require.NotNil(t, bySlug)
	assert.Equal(t, c.ID, bySlug.ID)

	missing, err := s.FindBySlug(ctx, "no-such-category-"+uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = s.Create(ctx, &models.Category{Name: c.Name, Slug: "other-" + c.Slug})
	assert.ErrorIs(t, err, models.ErrDuplicate)
}

func TestCategoryStoreUpdate(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	parent := testCategory(t, db)
	child := testCategory(t, db)

	desc := "described"
	inactive := false
	parentID := &parent.ID
	updated, err := s.Update(ctx, child.ID, models.CategoryChanges{
		Description: &desc,
		IsActive:    &inactive,
		ParentID:    &parentID,
	})
	require.NoError(t, err)
	assert.Equal(t, "described", updated.Description)
	assert.False(t, updated.IsActive)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, parent.ID, *updated.ParentID)
	assert.Equal(t, child.Name, updated.Name)

	var noParent *uuid.UUID
	cleared, err := s.Update(ctx, child.ID, models.CategoryChanges{ParentID: &noParent})
	require.NoError(t, err)
	assert.Nil(t, cleared.ParentID)

	_, err = s.Update(ctx, child.ID, models.CategoryChanges{Name: &parent.Name})
	assert.ErrorIs(t, err, models.ErrDuplicate)

	_, err = s.Update(ctx, uuid.New(), models.CategoryChanges{Description: &desc})
	assert.ErrorIs(t, err, models.ErrNotFound)

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	for _, c := range active {
		assert.NotEqual(t, child.ID, c.ID, "inactive category listed")
	}
}

func TestCategoryStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	author := testUser(t, db, models.RoleUser)
	used := testCategory(t, db)
	parent := testCategory(t, db)
	child := testCategory(t, db)

	parentID := &parent.ID
	_, err := s.Update(ctx, child.ID, models.CategoryChanges{ParentID: &parentID})
	require.NoError(t, err)

	_, err = NewPostStore(db).Create(ctx, &models.Post{
		Title: "P", Slug: "p-" + uuid.NewString(), Content: "c",
		CategoryID: used.ID, AuthorID: author.ID,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(ctx, used.ID), models.ErrReferenced)

	require.NoError(t, s.Delete(ctx, parent.ID))
	orphan, err := s.FindByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, orphan.ParentID, "children lose their parent link")

	assert.ErrorIs(t, s.Delete(ctx, parent.ID), models.ErrNotFound)
}
