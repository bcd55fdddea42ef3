package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/draftpress/draftpress/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostStore persists blog posts.
type PostStore struct {
	coll *mongo.Collection
}

// Insert saves a new post and fills in its generated id.
func (p *PostStore) Insert(ctx context.Context, post *models.Post) error {
	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now

	res, err := p.coll.InsertOne(ctx, post)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		post.ID = oid
	}
	return nil
}

// GetByID retrieves a post by its id.
func (p *PostStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := p.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// List returns posts newest first, optionally filtered by status.
func (p *PostStore) List(ctx context.Context, status string, page, pageSize int) ([]*models.Post, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cur, err := p.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer cur.Close(ctx)

	var out []*models.Post
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return out, nil
}

// Update replaces the mutable fields of a post.
func (p *PostStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now()
	res, err := p.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post.
func (p *PostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := p.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// React sets a user's reaction, replacing any previous one so that each user
// holds at most one reaction per post.
func (p *PostStore) React(ctx context.Context, postID, userID primitive.ObjectID, emoji string) error {
	if _, err := p.coll.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"reactions": bson.M{"user_id": userID}}},
	); err != nil {
		return fmt.Errorf("failed to clear previous reaction: %w", err)
	}

	res, err := p.coll.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"reactions": models.Reaction{Emoji: emoji, UserID: userID}}},
	)
	if err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TitleExists reports whether any post matches the exact title or the regex
// pattern. A zero since means the whole history.
func (p *PostStore) TitleExists(ctx context.Context, exact, pattern string, since time.Time) (bool, error) {
	var or []bson.M
	if exact != "" {
		or = append(or, bson.M{"title": exact})
	}
	if pattern != "" {
		or = append(or, bson.M{"title": bson.M{"$regex": primitive.Regex{Pattern: pattern, Options: "i"}}})
	}
	if len(or) == 0 {
		return false, nil
	}
	filter := bson.M{"$or": or}
	if !since.IsZero() {
		filter["created_at"] = bson.M{"$gte": since}
	}
	n, err := p.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to query post titles: %w", err)
	}
	return n > 0, nil
}
