package blog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// populator fills the author, category and comment-user projections of
// posts with one batched lookup per referenced collection.
type populator struct {
	users      UserRepository
	categories CategoryRepository
}

func (p *populator) posts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	userIDs := newIDSet()
	catIDs := newIDSet()
	for i := range posts {
		userIDs.add(posts[i].AuthorID)
		catIDs.add(posts[i].CategoryID)
		for _, c := range posts[i].Comments {
			userIDs.add(c.UserID)
		}
	}

	users, err := p.users.FindByIDs(ctx, userIDs.ids)
	if err != nil {
		return fmt.Errorf("populate users: %w", err)
	}
	userByID := make(map[uuid.UUID]*models.UserSummary, len(users))
	for i := range users {
		userByID[users[i].ID] = users[i].Summary()
	}

	cats, err := p.categories.FindByIDs(ctx, catIDs.ids)
	if err != nil {
		return fmt.Errorf("populate categories: %w", err)
	}
	catByID := make(map[uuid.UUID]*models.CategorySummary, len(cats))
	for i := range cats {
		catByID[cats[i].ID] = cats[i].Summary()
	}

	for i := range posts {
		post := &posts[i]
		post.Author = userByID[post.AuthorID]
		post.Category = catByID[post.CategoryID]
		if post.Tags == nil {
			post.Tags = models.Tags{}
		}
		if post.Comments == nil {
			post.Comments = []models.Comment{}
		}
		for j := range post.Comments {
			post.Comments[j].User = userByID[post.Comments[j].UserID]
		}
	}
	return nil
}

// idSet collects distinct ids in first-seen order.
type idSet struct {
	seen map[uuid.UUID]struct{}
	ids  []uuid.UUID
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[uuid.UUID]struct{})}
}

func (s *idSet) add(id uuid.UUID) {
	if id == uuid.Nil {
		return
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}
