package mongostore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"inkwell/internal/models"
)

// UserStore is the MongoDB user repository.
type UserStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// FindByID returns the user or nil.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

// FindByUsername returns the user with username, ignoring case, or nil.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username_lower": strings.ToLower(username)})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if isNoDocuments(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.model()
}

// FindByIDs returns the users that exist among ids.
func (s *UserStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": idStrings(ids)}})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		u, err := d.model()
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

// Create stores a user. Username and email are unique ignoring case.
func (s *UserStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	out := *u
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	if out.ProfileImage == "" {
		out.ProfileImage = models.DefaultProfileImage
	}
	if out.Role == "" {
		out.Role = models.RoleUser
	}
	now := s.now()
	out.CreatedAt, out.UpdatedAt = now, now

	if _, err := s.coll.InsertOne(ctx, newUserDoc(&out)); err != nil {
		return nil, fmt.Errorf("create user: %w", mapWriteError(err))
	}
	return &out, nil
}
