// Package mongostore implements the blog repositories on MongoDB. Posts are
// documents that embed their comment sequence; appends use $push and view
// counts use $inc, so both are single atomic document updates.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inkwell/internal/models"
)

// Collection names.
const (
	usersCollection      = "users"
	categoriesCollection = "categories"
	postsCollection      = "posts"
)

const connectTimeout = 10 * time.Second

// Store holds the MongoDB client and database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// Connect opens a client, verifies it with a ping and ensures the indexes
// the repositories rely on for uniqueness.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(connectTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := &Store{
		client: client,
		db:     client.Database(dbName),
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	slog.Info("mongodb connected", "database", dbName)
	return s, nil
}

// EnsureIndexes creates the unique and ordering indexes. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := func(keys ...string) mongo.IndexModel {
		d := bson.D{}
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: 1})
		}
		return mongo.IndexModel{Keys: d, Options: options.Index().SetUnique(true)}
	}

	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			unique("username_lower"),
			unique("email_lower"),
		},
		categoriesCollection: {
			unique("name"),
			unique("slug"),
			{Keys: bson.D{{Key: "parent_id", Value: 1}}},
		},
		postsCollection: {
			unique("slug"),
			{Keys: bson.D{{Key: "is_published", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
			{Keys: bson.D{{Key: "category_id", Value: 1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// Ping reports whether the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop removes the whole database. Used by tests.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

// Users returns the user repository.
func (s *Store) Users() *UserStore {
	return &UserStore{coll: s.db.Collection(usersCollection), now: s.now}
}

// Categories returns the category repository.
func (s *Store) Categories() *CategoryStore {
	return &CategoryStore{
		coll:  s.db.Collection(categoriesCollection),
		posts: s.db.Collection(postsCollection),
		now:   s.now,
	}
}

// Posts returns the post repository.
func (s *Store) Posts() *PostStore {
	return &PostStore{
		coll:       s.db.Collection(postsCollection),
		categories: s.db.Collection(categoriesCollection),
		now:        s.now,
	}
}

// mapWriteError turns duplicate key errors into models.ErrDuplicate.
func mapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", models.ErrDuplicate, err)
	}
	return err
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// exists reports whether coll has a document with the given _id.
func exists(ctx context.Context, coll *mongo.Collection, id string) (bool, error) {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
