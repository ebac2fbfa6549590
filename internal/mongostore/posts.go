package mongostore

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inkwell/internal/models"
)

// PostStore is the MongoDB post repository.
type PostStore struct {
	coll       *mongo.Collection
	categories *mongo.Collection
	now        func() time.Time
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// Create stores a post. The slug is unique; the category must exist.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	ok, err := exists(ctx, s.categories, p.CategoryID.String())
	if err != nil {
		return nil, fmt.Errorf("check post category: %w", err)
	}
	if !ok {
		return nil, models.ErrReferenced
	}

	out := *p
	out.ID = uuid.New()
	out.ViewCount = 0
	now := s.now()
	out.CreatedAt, out.UpdatedAt = now, now

	doc := newPostDoc(&out)
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("create post: %w", mapWriteError(err))
	}
	return doc.model()
}

// FindByID returns the post with its comments or nil.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

// FindBySlug returns the post with slug or nil.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.findOne(ctx, bson.M{"slug": slug})
}

func (s *PostStore) findOne(ctx context.Context, filter bson.M) (*models.Post, error) {
	var doc postDoc
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return doc.model()
}

// ListPublished returns a page of published posts, newest first, and the
// total number of matches. A zero limit returns every match.
func (s *PostStore) ListPublished(ctx context.Context, f models.PostFilter) ([]models.Post, int, error) {
	filter := bson.M{"is_published": true}
	if f.CategoryID != nil {
		filter["category_id"] = f.CategoryID.String()
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count published posts: %w", err)
	}

	opts := options.Find().SetSort(newestFirst).SetSkip(int64(f.Offset))
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	posts, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list published posts: %w", err)
	}
	return posts, int(total), nil
}

// SearchPublished matches query against title, content and tags ignoring
// case. The query is matched literally.
func (s *PostStore) SearchPublished(ctx context.Context, query string, limit int) ([]models.Post, error) {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{
		"is_published": true,
		"$or": bson.A{
			bson.M{"title": re},
			bson.M{"content": re},
			bson.M{"tags": re},
		},
	}

	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	posts, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return posts, nil
}

func (s *PostStore) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Post, error) {
	cur, err := s.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(docs))
	for _, d := range docs {
		p, err := d.model()
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, nil
}

// CountByCategory returns the number of posts, published or not, in the category.
func (s *PostStore) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"category_id": categoryID.String()})
	if err != nil {
		return 0, fmt.Errorf("count posts by category: %w", err)
	}
	return int(n), nil
}

// Update applies the non-nil changes in one findAndModify.
func (s *PostStore) Update(ctx context.Context, id uuid.UUID, ch models.PostChanges) (*models.Post, error) {
	set := bson.M{"updated_at": s.now()}
	if ch.Title != nil {
		set["title"] = *ch.Title
	}
	if ch.Content != nil {
		set["content"] = *ch.Content
	}
	if ch.Excerpt != nil {
		set["excerpt"] = *ch.Excerpt
	}
	if ch.FeaturedImage != nil {
		set["featured_image"] = *ch.FeaturedImage
	}
	if ch.CategoryID != nil {
		ok, err := exists(ctx, s.categories, ch.CategoryID.String())
		if err != nil {
			return nil, fmt.Errorf("check post category: %w", err)
		}
		if !ok {
			return nil, models.ErrReferenced
		}
		set["category_id"] = ch.CategoryID.String()
	}
	if ch.Tags != nil {
		set["tags"] = []string(models.NormalizeTags(*ch.Tags))
	}
	if ch.IsPublished != nil {
		set["is_published"] = *ch.IsPublished
	}

	var doc postDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set}, opts).Decode(&doc)
	if isNoDocuments(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", mapWriteError(err))
	}
	return doc.model()
}

// Delete removes the post and, being embedded, its comments.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AppendComment pushes c onto the post's comment array.
func (s *PostStore) AppendComment(ctx context.Context, postID uuid.UUID, c *models.Comment) (*models.Comment, error) {
	out := *c
	out.ID = uuid.New()
	out.CreatedAt = s.now()
	out.User = nil

	doc := commentDoc{
		ID:        out.ID.String(),
		UserID:    out.UserID.String(),
		Content:   out.Content,
		CreatedAt: out.CreatedAt,
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": postID.String()},
		bson.M{"$push": bson.M{"comments": doc}},
	)
	if err != nil {
		return nil, fmt.Errorf("append comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, models.ErrNotFound
	}
	return &out, nil
}

// IncrementViewCount adds one view with $inc and returns the new count.
func (s *PostStore) IncrementViewCount(ctx context.Context, id uuid.UUID) (int64, error) {
	var out struct {
		ViewCount int64 `bson:"view_count"`
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"view_count": 1})
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$inc": bson.M{"view_count": 1}},
		opts,
	).Decode(&out)
	if isNoDocuments(err) {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment view count: %w", err)
	}
	return out.ViewCount, nil
}
