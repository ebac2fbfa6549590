package blog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/models"
)

type named struct{ name string }

func TestResolve(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	slugShapedLikeID := uuid.New()

	byID := func(_ context.Context, got uuid.UUID) (*named, error) {
		if got == id {
			return &named{"by-id"}, nil
		}
		return nil, nil
	}
	bySlug := func(_ context.Context, s string) (*named, error) {
		switch s {
		case "hello":
			return &named{"by-slug"}, nil
		case slugShapedLikeID.String():
			return &named{"uuid-slug"}, nil
		}
		return nil, nil
	}

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"identifier", id.String(), "by-id"},
		{"slug", "hello", "by-slug"},
		{"padded slug", "  hello ", "by-slug"},
		{"identifier falls back to slug", slugShapedLikeID.String(), "uuid-slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(ctx, tt.token, byID, bySlug)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.name)
		})
	}

	for _, token := range []string{"", "missing", uuid.NewString()} {
		_, err := Resolve(ctx, token, byID, bySlug)
		assert.ErrorIs(t, err, models.ErrNotFound, "token %q", token)
	}
}

func TestResolvePropagatesStoreErrors(t *testing.T) {
	boom := errors.New("connection reset")
	failing := func(context.Context, uuid.UUID) (*named, error) { return nil, boom }
	neverCalled := func(context.Context, string) (*named, error) {
		t.Fatal("slug lookup must not run after a store error")
		return nil, nil
	}

	_, err := Resolve(context.Background(), uuid.NewString(), failing, neverCalled)
	assert.ErrorIs(t, err, boom)
}

func TestNewPageRequest(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
		wantOffset          int
	}{
		{0, 0, 1, 10, 0},
		{-3, -1, 1, 10, 0},
		{2, 5, 2, 5, 5},
		{3, 1000, 3, 100, 200},
		{maxPageNumber + 1, 10, maxPageNumber, 10, (maxPageNumber - 1) * 10},
	}
	for _, tt := range tests {
		got := NewPageRequest(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, got.Page)
		assert.Equal(t, tt.wantLimit, got.Limit)
		assert.Equal(t, tt.wantOffset, got.Offset())
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 10))
	assert.Equal(t, 1, totalPages(1, 10))
	assert.Equal(t, 1, totalPages(10, 10))
	assert.Equal(t, 2, totalPages(11, 10))
	assert.Equal(t, 0, totalPages(5, 0))
}

func TestPolicy(t *testing.T) {
	author := &models.Principal{ID: uuid.New(), Role: models.RoleUser}
	other := &models.Principal{ID: uuid.New(), Role: models.RoleUser}
	admin := &models.Principal{ID: uuid.New(), Role: models.RoleAdmin}
	post := &models.Post{AuthorID: author.ID}

	assert.True(t, CanMutatePost(author, post))
	assert.False(t, CanMutatePost(other, post))
	assert.True(t, CanMutatePost(admin, post))
	assert.False(t, CanMutatePost(nil, post))

	assert.True(t, CanMutateCategory(admin))
	assert.False(t, CanMutateCategory(author))
	assert.False(t, CanMutateCategory(nil))

	assert.ErrorIs(t, requirePrincipal(nil), ErrUnauthenticated)
	assert.NoError(t, requirePrincipal(other))
}

func TestValidateStructMessages(t *testing.T) {
	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}
	tags := make([]string, 51)
	for i := range tags {
		tags[i] = "t"
	}

	err := validateStruct(models.PostDraft{Title: string(long), Content: "c", Category: "x", Tags: tags})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.ElementsMatch(t, FieldErrors{
		{Param: "title", Msg: "Title cannot be more than 200 characters"},
		{Param: "tags", Msg: "Tags cannot have more than 50 entries"},
	}, fe)
	assert.ErrorIs(t, err, ErrValidation)

	assert.NoError(t, validateStruct(models.PostDraft{Title: "t", Content: "c", Category: "x"}))
}

func TestErrorKinds(t *testing.T) {
	err := newError(ErrConflict, "Category %q exists", "Tech")
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, `Category "Tech" exists`, err.Error())

	fe := fieldError("content", "Comment content is required")
	assert.ErrorIs(t, fe, ErrValidation)
	assert.Equal(t, "Comment content is required", fe.Error())
}
