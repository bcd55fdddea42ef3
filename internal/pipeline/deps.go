package pipeline

import (
	"context"
	"time"

	"github.com/draftpress/draftpress/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SuggestionRepo is the suggestion persistence surface the pipeline needs.
type SuggestionRepo interface {
	Insert(ctx context.Context, sg *models.Suggestion) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Suggestion, error)
	ListByStatus(ctx context.Context, status string, page, pageSize int) ([]*models.Suggestion, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status, notes string, approvedAt *time.Time) error
	MarkPublished(ctx context.Context, id, postID primitive.ObjectID, at time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PostRepo is the post persistence surface the pipeline needs.
type PostRepo interface {
	Insert(ctx context.Context, post *models.Post) error
}

// UserRepo resolves persisted accounts, lazily creating them.
type UserRepo interface {
	FindOrCreate(ctx context.Context, username, email, role string) (*models.User, error)
}

// Generator is the generative text client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TopicSource supplies candidate topics.
type TopicSource interface {
	FetchTopics(ctx context.Context) []models.TopicItem
}

// DuplicateChecker runs pre- and post-generation duplicate checks.
type DuplicateChecker interface {
	IsDuplicateTopic(ctx context.Context, topic models.TopicItem, windowHours int) (bool, error)
	IsDuplicateTitle(ctx context.Context, title string) (bool, error)
}

// ImageFinder picks a featured image for a phrase, never failing.
type ImageFinder interface {
	Search(ctx context.Context, phrase string) models.FeaturedImage
}

// ImageMirror copies a chosen image into owned object storage.
type ImageMirror interface {
	MirrorImage(ctx context.Context, imageURL, key string) (string, error)
}

// SeenMarker tracks topics already fed into the pipeline.
type SeenMarker interface {
	IsSeen(ctx context.Context, uniqueID string) (bool, error)
	MarkSeen(ctx context.Context, uniqueID string, ttl time.Duration) error
}

// Principal identifies the actor requesting a transition.
type Principal struct {
	Username string
	Email    string
	Admin    bool
	// System marks the synthetic administrative actor used for automated
	// publishing; its persisted account is created lazily.
	System bool
}
