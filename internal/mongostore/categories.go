package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inkwell/internal/models"
)

// CategoryStore is the MongoDB category repository.
type CategoryStore struct {
	coll  *mongo.Collection
	posts *mongo.Collection
	now   func() time.Time
}

// ListActive returns active categories ordered by name.
func (s *CategoryStore) ListActive(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return s.find(ctx, bson.M{"is_active": true}, opts)
}

// FindByID returns the category or nil.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

// FindBySlug returns the category with slug or nil.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.findOne(ctx, bson.M{"slug": slug})
}

// FindByIDs returns the categories that exist among ids.
func (s *CategoryStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	if len(ids) == 0 {
		return []models.Category{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": idStrings(ids)}})
}

func (s *CategoryStore) findOne(ctx context.Context, filter bson.M) (*models.Category, error) {
	var doc categoryDoc
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return doc.model()
}

func (s *CategoryStore) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Category, error) {
	cur, err := s.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	var docs []categoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	out := make([]models.Category, 0, len(docs))
	for _, d := range docs {
		c, err := d.model()
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

// Create stores a category. Name and slug are unique.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	out := *c
	out.ID = uuid.New()
	now := s.now()
	out.CreatedAt, out.UpdatedAt = now, now

	if _, err := s.coll.InsertOne(ctx, newCategoryDoc(&out)); err != nil {
		return nil, fmt.Errorf("create category: %w", mapWriteError(err))
	}
	return &out, nil
}

// Update applies the non-nil changes in one findAndModify.
func (s *CategoryStore) Update(ctx context.Context, id uuid.UUID, ch models.CategoryChanges) (*models.Category, error) {
	set := bson.M{"updated_at": s.now()}
	if ch.Name != nil {
		set["name"] = *ch.Name
	}
	if ch.Slug != nil {
		set["slug"] = *ch.Slug
	}
	if ch.Description != nil {
		set["description"] = *ch.Description
	}
	if ch.Image != nil {
		set["image"] = *ch.Image
	}
	if ch.IsActive != nil {
		set["is_active"] = *ch.IsActive
	}
	if ch.ParentID != nil {
		set["parent_id"] = idString(*ch.ParentID)
	}

	var doc categoryDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set}, opts).Decode(&doc)
	if isNoDocuments(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", mapWriteError(err))
	}
	return doc.model()
}

// Delete removes a category no post references and detaches its children.
// MongoDB has no foreign keys, so the reference check and the delete are
// two operations; a post created in between keeps a dangling category id.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.posts.CountDocuments(ctx, bson.M{"category_id": id.String()}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("count category posts: %w", err)
	}
	if n > 0 {
		return models.ErrReferenced
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}

	_, err = s.coll.UpdateMany(ctx,
		bson.M{"parent_id": id.String()},
		bson.M{"$set": bson.M{"parent_id": nil, "updated_at": s.now()}},
	)
	if err != nil {
		return fmt.Errorf("detach child categories: %w", err)
	}
	return nil
}
