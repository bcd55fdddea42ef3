package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/draftpress/draftpress/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore persists users.
type UserStore struct {
	coll *mongo.Collection
}

// FindOrCreate returns the user with the given username, creating it on first
// use. The system admin account is resolved lazily through this path.
func (u *UserStore) FindOrCreate(ctx context.Context, username, email, role string) (*models.User, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	update := bson.M{"$setOnInsert": bson.M{
		"username":   username,
		"email":      email,
		"role":       role,
		"created_at": time.Now(),
	}}

	var user models.User
	err := u.coll.FindOneAndUpdate(ctx, bson.M{"username": username}, update, opts).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create user %q: %w", username, err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by username.
func (u *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := u.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
