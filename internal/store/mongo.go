package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Store wraps the MongoDB database and exposes one accessor per collection.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	Suggestions *SuggestionStore
	Posts       *PostStore
	Users       *UserStore
	Categories  *CategoryStore
	Comments    *CommentStore
}

// New connects to MongoDB and pings it before returning.
func New(ctx context.Context, uri, database string, timeout time.Duration) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:      client,
		db:          db,
		Suggestions: &SuggestionStore{coll: db.Collection("suggestions")},
		Posts:       &PostStore{coll: db.Collection("posts")},
		Users:       &UserStore{coll: db.Collection("users")},
		Categories:  &CategoryStore{coll: db.Collection("categories")},
		Comments:    &CommentStore{coll: db.Collection("comments")},
	}
	return s, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
