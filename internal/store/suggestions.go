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

// SuggestionStore persists AI-generated blog suggestions.
type SuggestionStore struct {
	coll *mongo.Collection
}

// Insert saves a new suggestion and fills in its generated id.
func (s *SuggestionStore) Insert(ctx context.Context, sg *models.Suggestion) error {
	if sg.GeneratedAt.IsZero() {
		sg.GeneratedAt = time.Now()
	}
	res, err := s.coll.InsertOne(ctx, sg)
	if err != nil {
		return fmt.Errorf("failed to insert suggestion: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		sg.ID = oid
	}
	return nil
}

// GetByID retrieves a suggestion by its id.
func (s *SuggestionStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Suggestion, error) {
	var sg models.Suggestion
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&sg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}
	return &sg, nil
}

// ListByStatus returns suggestions with the given status, newest first.
func (s *SuggestionStore) ListByStatus(ctx context.Context, status string, page, pageSize int) ([]*models.Suggestion, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "generated_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cur, err := s.coll.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	defer cur.Close(ctx)

	var out []*models.Suggestion
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode suggestions: %w", err)
	}
	return out, nil
}

// CountByStatus counts suggestions in the given status.
func (s *SuggestionStore) CountByStatus(ctx context.Context, status string) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count suggestions: %w", err)
	}
	return n, nil
}

// SetStatus performs a plain status transition (approved/rejected) with notes.
func (s *SuggestionStore) SetStatus(ctx context.Context, id primitive.ObjectID, status, notes string, approvedAt *time.Time) error {
	set := bson.M{"status": status}
	if notes != "" {
		set["admin_notes"] = notes
	}
	if approvedAt != nil {
		set["approved_at"] = approvedAt
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update suggestion status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPublished records the published transition together with the post link.
func (s *SuggestionStore) MarkPublished(ctx context.Context, id, postID primitive.ObjectID, at time.Time) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":       models.SuggestionPublished,
		"post_id":      postID,
		"published_at": at,
	}})
	if err != nil {
		return fmt.Errorf("failed to mark suggestion published: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the suggestion record entirely.
func (s *SuggestionStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete suggestion: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TitleExists reports whether any suggestion matches the exact title or the
// regex pattern. A zero since means the whole history.
func (s *SuggestionStore) TitleExists(ctx context.Context, exact, pattern string, since time.Time) (bool, error) {
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
		filter["generated_at"] = bson.M{"$gte": since}
	}
	n, err := s.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to query suggestion titles: %w", err)
	}
	return n > 0, nil
}

// TopicExists reports whether a suggestion with the topic's uniqueId and
// source was generated since the given time.
func (s *SuggestionStore) TopicExists(ctx context.Context, uniqueID, source string, since time.Time) (bool, error) {
	filter := bson.M{"unique_id": uniqueID, "source": source}
	if !since.IsZero() {
		filter["generated_at"] = bson.M{"$gte": since}
	}
	n, err := s.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to query suggestion topics: %w", err)
	}
	return n > 0, nil
}
