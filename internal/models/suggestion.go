package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Suggestion statuses. A suggestion is created pending and moves through
// exactly one outbound transition.
const (
	SuggestionPending   = "pending"
	SuggestionApproved  = "approved"
	SuggestionRejected  = "rejected"
	SuggestionPublished = "published"
)

// FeaturedImage holds the chosen illustration and its attribution.
type FeaturedImage struct {
	URL    string `bson:"url" json:"url"`
	Credit string `bson:"credit,omitempty" json:"credit,omitempty"`
}

// Suggestion is a draft AI-generated blog candidate awaiting human review.
// Collection: suggestions
type Suggestion struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UniqueID    string             `bson:"unique_id" json:"unique_id"`
	Title       string             `bson:"title" json:"title"`
	Content     string             `bson:"content" json:"content"`
	Summary     string             `bson:"summary" json:"summary"`
	Tags        []string           `bson:"tags" json:"tags"`
	Category    string             `bson:"category" json:"category"`
	Source      string             `bson:"source" json:"source"`
	URL         string             `bson:"url,omitempty" json:"url,omitempty"`
	ReadTime    int                `bson:"read_time" json:"read_time"`
	PublishDate string             `bson:"publish_date,omitempty" json:"publish_date,omitempty"`
	Featured    bool               `bson:"featured" json:"featured"`
	Image       FeaturedImage      `bson:"image,omitempty" json:"image,omitempty"`

	Status     string             `bson:"status" json:"status"`
	AdminNotes string             `bson:"admin_notes,omitempty" json:"admin_notes,omitempty"`
	PostID     primitive.ObjectID `bson:"post_id,omitempty" json:"post_id,omitempty"`

	GeneratedAt time.Time  `bson:"generated_at" json:"generated_at"`
	ApprovedAt  *time.Time `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	PublishedAt *time.Time `bson:"published_at,omitempty" json:"published_at,omitempty"`
}
