package store

import (
	"context"
	"fmt"

	"github.com/draftpress/draftpress/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CategoryStore persists post categories.
type CategoryStore struct {
	coll *mongo.Collection
}

// Insert saves a category.
func (c *CategoryStore) Insert(ctx context.Context, cat *models.Category) error {
	res, err := c.coll.InsertOne(ctx, cat)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		cat.ID = oid
	}
	return nil
}

// List returns all categories sorted by name.
func (c *CategoryStore) List(ctx context.Context) ([]*models.Category, error) {
	cur, err := c.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cur.Close(ctx)

	var out []*models.Category
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return out, nil
}
