package store

import (
	"context"
	"fmt"
	"time"

	"github.com/draftpress/draftpress/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentStore persists reader comments.
type CommentStore struct {
	coll *mongo.Collection
}

// Insert saves a comment.
func (c *CommentStore) Insert(ctx context.Context, cm *models.Comment) error {
	if cm.CreatedAt.IsZero() {
		cm.CreatedAt = time.Now()
	}
	res, err := c.coll.InsertOne(ctx, cm)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		cm.ID = oid
	}
	return nil
}

// ListByPost returns the comments on a post, oldest first.
func (c *CommentStore) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error) {
	cur, err := c.coll.Find(ctx, bson.M{"post_id": postID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer cur.Close(ctx)

	var out []*models.Comment
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return out, nil
}
